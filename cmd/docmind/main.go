// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docmind"
	"github.com/poiesic/docmind/agent"
	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/chunking"
	"github.com/poiesic/docmind/config"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/ingestion"
	"github.com/poiesic/docmind/session"
)

func main() {
	// Best effort; absence of a .env file is fine
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docmind",
		Usage: "Document ingestion and retrieval-augmented question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document into the corpus",
				ArgsUsage: "FILE",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "method",
						Usage: "Chunking method (recursive, semantic, section)",
						Value: chunking.MethodRecursive,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in bytes",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Overlap between consecutive chunks in bytes",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the processing status of a file",
				ArgsUsage: "FILE_ID",
				Action:    statusCommand,
			},
			{
				Name:   "files",
				Usage:  "List ingested files",
				Action: filesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only list files in this status (uploaded, processing, completed, failed)",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a file and its derived data",
				ArgsUsage: "FILE_ID",
				Action:    deleteCommand,
			},
			{
				Name:      "query",
				Usage:     "Ask a question over the ingested corpus",
				ArgsUsage: "QUESTION",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "file",
						Usage: "Restrict retrieval to one file ID",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session ID for conversation continuity",
					},
					&cli.BoolFlag{
						Name:  "interactive",
						Usage: "Start an interactive chat session",
					},
					&cli.BoolFlag{
						Name:  "no-rag",
						Usage: "Answer without document retrieval",
					},
				},
			},
			{
				Name:   "metrics",
				Usage:  "Show ingestion performance aggregates",
				Action: metricsCommand,
			},
			{
				Name:   "recover",
				Usage:  "Mark stale processing files as failed",
				Action: recoverCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only recover files idle longer than this",
						Value: 10 * time.Minute,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase loads configuration and wires a Database from it.
func openDatabase(c *cli.Context) (*docmind.Database, *config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithChatHost(cfg.AI.ChatHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithChatModel(cfg.AI.ChatModel),
		ai.WithEmbeddingDimension(cfg.AI.EmbeddingDimension),
		ai.WithTemperature(cfg.AI.Temperature),
		ai.WithRequestsPerSecond(cfg.AI.RequestsPerSecond),
	)

	opts := []docmind.DatabaseOption{docmind.WithAIConfig(aiConfig)}
	if cfg.VectorStore.Backend == "qdrant" {
		opts = append(opts, docmind.WithQdrant(cfg.VectorStore.URL, cfg.VectorStore.APIKey))
	}

	db, err := docmind.NewDatabase(cfg.Storage.Path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func pipelineOptions(cfg *config.Config) []ingestion.Option {
	opts := []ingestion.Option{
		ingestion.WithBatchSize(cfg.Ingestion.BatchSize),
		ingestion.WithMaxFileSize(cfg.Ingestion.MaxFileSizeBytes),
	}
	if cfg.Ingestion.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(cfg.Ingestion.PoolSize))
	}
	if cfg.VectorStore.Collection != "" {
		opts = append(opts, ingestion.WithSharedCollection(cfg.VectorStore.Collection))
	}
	return opts
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(pipelineOptions(cfg)...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	params := chunking.Params{
		ChunkSize:         cfg.Ingestion.ChunkSize,
		Overlap:           cfg.Ingestion.ChunkOverlap,
		SemanticThreshold: cfg.Ingestion.SemanticThreshold,
	}
	if v := c.Int("chunk-size"); v > 0 {
		params.ChunkSize = v
	}
	if c.IsSet("overlap") {
		params.Overlap = c.Int("overlap")
	}

	ctx := context.Background()
	ingestOpts := &ingestion.IngestOptions{
		Method: c.String("method"),
		Params: &params,
	}
	record, err := pipeline.Ingest(ctx, filepath.Base(path), string(content), ingestOpts)
	if err == ingestion.ErrDuplicateDocument {
		if record.Status != core.FileStatusFailed {
			fmt.Printf("Already ingested as file %d (%s)\n", record.Id, record.Filename)
			return nil
		}
		// A failed earlier attempt: requeue and reprocess the same record.
		fmt.Printf("Retrying failed file %d (%s)\n", record.Id, record.Filename)
		if _, err := pipeline.Tracker().Requeue(ctx, record.Id); err != nil {
			return err
		}
		record, err = pipeline.Resume(ctx, record.Id, string(content), ingestOpts)
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	printRecord(record)
	if record.Status == core.FileStatusFailed {
		return fmt.Errorf("ingestion failed at stage %s: %s", record.FailedStage, record.ErrorDetail)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	id, err := parseFileID(c)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.FileRepository().GetFileRecord(context.Background(), id)
	if err != nil {
		return err
	}
	printRecord(record)
	return nil
}

func filesCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var only core.FileStatus
	if s := c.String("status"); s != "" {
		only, err = core.ParseFileStatus(s)
		if err != nil {
			return err
		}
	}

	records, err := db.FileRepository().ListFileRecords(context.Background())
	if err != nil {
		return err
	}
	printed := 0
	for _, record := range records {
		if only != 0 && record.Status != only {
			continue
		}
		fmt.Printf("%-8d %-10s %-30s chunks=%-4d %s\n",
			record.Id, record.Status, record.Filename, record.ChunkCount,
			record.UploadedAt.Format(time.RFC3339))
		printed++
	}
	if printed == 0 {
		fmt.Println("No files found.")
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	id, err := parseFileID(c)
	if err != nil {
		return err
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(pipelineOptions(cfg)...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.Delete(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted file %d\n", id)
	return nil
}

func queryCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := db.NewSessionMemory(session.WithMaxTurns(cfg.Agent.MaxTurns))
	eng, err := db.NewAgent(sessions,
		agent.WithTopK(cfg.Agent.TopK),
		agent.WithMaxTokens(cfg.Agent.MaxTokens),
		agent.WithContextBudget(cfg.Agent.ContextBudget))
	if err != nil {
		return err
	}

	sessionID := c.String("session")
	fileID := core.ID(c.Uint64("file"))
	noRAG := c.Bool("no-rag")

	if c.Bool("interactive") {
		return interactiveChat(eng, sessionID, fileID, noRAG)
	}

	if c.NArg() < 1 {
		return fmt.Errorf("expected a question argument (or --interactive)")
	}
	question := strings.Join(c.Args().Slice(), " ")
	return askOnce(eng, sessionID, fileID, question, noRAG)
}

func askOnce(eng *agent.Engine, sessionID string, fileID core.ID, question string, noRAG bool) error {
	resp, err := eng.Query(context.Background(), agent.QueryRequest{
		SessionID:     sessionID,
		Query:         question,
		FileID:        fileID,
		SkipRetrieval: noRAG,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if resp.Degraded {
		fmt.Fprintln(os.Stderr, "(answered without document context)")
	}
	for _, source := range resp.Sources {
		fmt.Fprintf(os.Stderr, "  source: %s #%d (score %.3f)\n",
			source.Filename, source.ChunkIndex, source.Score)
	}
	fmt.Fprintf(os.Stderr, "  session: %s  (%.2fs)\n", resp.SessionID, resp.ResponseSeconds)
	return nil
}

func interactiveChat(eng *agent.Engine, sessionID string, fileID core.ID, noRAG bool) error {
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}
	fmt.Fprintf(os.Stderr, "Session %s. Type your question, or 'exit' to quit.\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := askOnce(eng, sessionID, fileID, line, noRAG); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func metricsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	aggregates, err := db.MetricsRepository().AggregatePerformance(context.Background())
	if err != nil {
		return err
	}
	if len(aggregates) == 0 {
		fmt.Println("No performance records.")
		return nil
	}
	fmt.Printf("%-12s %-20s %-6s %-8s %-10s %-10s %-10s %-10s\n",
		"METHOD", "MODEL", "FILES", "CHUNKS", "CHUNK(s)", "EMBED(s)", "INDEX(s)", "TOTAL(s)")
	for _, a := range aggregates {
		fmt.Printf("%-12s %-20s %-6d %-8d %-10.3f %-10.3f %-10.3f %-10.3f\n",
			a.ChunkingMethod, a.EmbeddingModel, a.Files, a.TotalChunks,
			a.MeanChunkingSeconds, a.MeanEmbeddingSeconds, a.MeanIndexingSeconds, a.MeanTotalSeconds)
	}
	return nil
}

func recoverCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	tracker := ingestion.NewStatusTracker(db.FileRepository(), slog.Default())
	recovered, err := tracker.RecoverStale(context.Background(), c.Duration("older-than"))
	if err != nil {
		return err
	}
	if len(recovered) == 0 {
		fmt.Println("No stale files found.")
		return nil
	}
	for _, id := range recovered {
		fmt.Printf("Recovered file %d (now failed, requeue to retry)\n", id)
	}
	return nil
}

func parseFileID(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one file ID argument")
	}
	var id uint64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid file ID %q", c.Args().First())
	}
	return core.ID(id), nil
}

func printRecord(record *core.FileRecord) {
	fmt.Printf("File:       %d\n", record.Id)
	fmt.Printf("Filename:   %s\n", record.Filename)
	fmt.Printf("Status:     %s\n", record.Status)
	fmt.Printf("Method:     %s\n", record.ChunkingMethod)
	fmt.Printf("Chunks:     %d\n", record.ChunkCount)
	fmt.Printf("Attempts:   %d\n", record.Attempts)
	if record.FailedStage != "" {
		fmt.Printf("Failed at:  %s (%s)\n", record.FailedStage, record.ErrorDetail)
	}
	if record.Status == core.FileStatusCompleted {
		fmt.Printf("Timings:    chunk %.3fs, embed %.3fs, index %.3fs\n",
			record.ChunkingSeconds, record.EmbeddingSeconds, record.IndexingSeconds)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
