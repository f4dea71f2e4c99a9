// Copyright 2026 Aldeia Systems
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aldeia/advisor"
	"github.com/aldeia/advisor/ai"
	"github.com/aldeia/advisor/auditlog"
	"github.com/aldeia/advisor/chat"
	"github.com/aldeia/advisor/httpapi"
	"github.com/aldeia/advisor/ingest"
	"github.com/aldeia/advisor/retrieval"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "aldeia",
		Usage: "Fire recovery advisor: retrieval-backed Q&A over county documents",
		Flags: []cli.Flag{
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
				Name:   "serve",
				Usage:  "Run the advisor HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":3001",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
					&cli.StringSliceFlag{
						Name:  "docs",
						Usage: "Document directories served by the admin reindex endpoint",
					},
					&cli.StringFlag{
						Name:  "bias-log",
						Usage: "Path to the fairness audit log",
						Value: "bias_fairness.log",
					},
					&cli.StringFlag{
						Name:  "error-log",
						Usage: "Path to the error audit log",
						Value: "error.log",
					},
					&cli.IntFlag{
						Name:  "max-sessions",
						Usage: "Maximum number of tracked conversations",
						Value: 1024,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Index recovery documents into the vector store",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "docs",
						Usage:    "Document directories to index",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent document workers",
					},
					&cli.BoolFlag{
						Name:  "reindex",
						Usage: "Clear the index before ingesting",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the vector store from the command line",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	a, err := advisor.New(c.String("db"), false,
		advisor.WithAIConfig(aiConfig),
		advisor.WithMaxSessions(c.Int("max-sessions")),
	)
	if err != nil {
		return fmt.Errorf("failed to open advisor: %w", err)
	}
	defer a.Close()

	biasLog := auditlog.NewLog(c.String("bias-log"))
	errorLog := auditlog.NewLog(c.String("error-log"))

	engine, err := a.NewEngine(chat.WithBiasLog(biasLog))
	if err != nil {
		return fmt.Errorf("failed to create chat engine: %w", err)
	}

	serverOpts := []httpapi.Option{
		httpapi.WithBiasLog(biasLog),
		httpapi.WithErrorLog(errorLog),
	}

	docs := c.StringSlice("docs")
	if len(docs) > 0 {
		pipeline, err := a.NewIngestPipeline()
		if err != nil {
			return fmt.Errorf("failed to create ingest pipeline: %w", err)
		}
		defer pipeline.Release()
		serverOpts = append(serverOpts, httpapi.WithPipeline(pipeline, docs...))
	}

	server, err := a.NewServer(c.String("addr"), engine, serverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return server.Start(ctx)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	a, err := advisor.New(c.String("db"), false, advisor.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open advisor: %w", err)
	}
	defer a.Close()

	var opts []ingest.Option
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingest.WithPoolSize(size))
	}
	pipeline, err := a.NewIngestPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	docs := c.StringSlice("docs")
	var stats *ingest.Stats
	if c.Bool("reindex") {
		stats, err = pipeline.Reindex(ctx, docs...)
	} else {
		stats, err = pipeline.IndexDirectories(ctx, docs...)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Documents: %d\nChunks: %d\nFailures: %d\n",
		stats.Documents, stats.Chunks, stats.Failures)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	a, err := advisor.New(c.String("db"), false, advisor.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open advisor: %w", err)
	}
	defer a.Close()

	result, err := a.Ranker().Retrieve(ctx, query, query, retrieval.ModeSearch)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if !result.Grounded {
		fmt.Fprintln(os.Stderr, "No grounded matches found.")
	}
	for i, m := range result.Matches {
		fmt.Printf("%d. [%s #%d] distance=%.4f\n%s\n\n", i+1, m.Source, m.ChunkIndex, m.Distance, m.Text)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
