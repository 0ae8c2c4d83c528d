// Package agent implements the retrieval-augmented query engine. It
// embeds questions, retrieves relevant chunks from the vector store,
// composes a token-budgeted prompt with conversation history, and
// generates answers. Queries matching a registered tool (such as
// interview booking) are routed to the tool instead of retrieval.
//
// Retrieval failures degrade a query rather than failing it: the
// answer is generated without document context and the response is
// flagged as degraded.
package agent
