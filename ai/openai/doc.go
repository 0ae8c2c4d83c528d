// Package openai implements the ai interfaces using OpenAI-compatible
// HTTP APIs via langchaingo. It works with any server speaking the
// OpenAI wire format, including Ollama and LocalAI.
package openai
