// memctl is an operator CLI for the fact memory: add text, search, list and
// wipe tenancy scopes without going through the HTTP service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/adapter"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/graph"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/ingest"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/internal/memory"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/config"
	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
	"github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/logger"
)

var (
	flagUserID  string
	flagAgentID string
	flagRunID   string
	flagLimit   int
	flagFile    string
	flagHTML    bool
)

func main() {
	root := &cobra.Command{
		Use:           "memctl",
		Short:         "Operate the graph-backed fact memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagUserID, "user-id", "", "tenancy user id")
	root.PersistentFlags().StringVar(&flagAgentID, "agent-id", "", "tenancy agent id")
	root.PersistentFlags().StringVar(&flagRunID, "run-id", "", "tenancy run id")

	root.AddCommand(newAddCmd(), newSearchCmd(), newGetCmd(), newDeleteCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func filters() graph.Filters {
	return graph.Filters{UserID: flagUserID, AgentID: flagAgentID, RunID: flagRunID}
}

// setup wires config, driver and engine for one command invocation
func setup(ctx context.Context) (*memory.Engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Env); err != nil {
		return nil, nil, err
	}

	toolStyle, err := memory.ParseToolStyle(cfg.ToolStyle)
	if err != nil {
		return nil, nil, err
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}

	repo := graph.NewRepository(driver)
	llm := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
	embedder := adapter.NewEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDims)
	engine := memory.NewEngine(repo, llm, embedder, toolStyle)

	cleanup := func() {
		driver.Close(context.Background())
		logger.Sync()
	}
	return engine, cleanup, nil
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Ingest text into the fact graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			if flagFile != "" {
				data, err := os.ReadFile(flagFile)
				if err != nil {
					return err
				}
				text = string(data)
			}
			if text == "" {
				return fmt.Errorf("provide text as an argument or via --file")
			}
			if flagHTML {
				text = ingest.Text(text)
			}

			ctx := cmd.Context()
			engine, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := engine.Add(ctx, text, filters())
			if err != nil {
				return err
			}

			fmt.Printf("Added %d relations, deleted %d\n", len(result.Added), len(result.Deleted))
			for _, r := range result.Added {
				fmt.Printf("  + %s -[%s]-> %s\n", r.Source, r.Relationship, r.Target)
			}
			for _, r := range result.Deleted {
				fmt.Printf("  - %s -[%s]-> %s\n", r.Source, r.Relationship, r.Target)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFile, "file", "", "read text from a file")
	cmd.Flags().BoolVar(&flagHTML, "html", false, "strip HTML before ingesting")
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search ranked triples in the fact graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := engine.Search(ctx, args[0], filters(), flagLimit)
			if err != nil {
				return err
			}

			logger.Get().Debug("Search results", zap.Int("count", len(results)))
			for _, r := range results {
				fmt.Printf("%s -[%s]-> %s\n", r.Source, r.Relationship, r.Target)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", memory.DefaultLimit, "result cap")
	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "List triples in a tenancy scope, unranked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := engine.GetAll(ctx, filters(), flagLimit)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s -[%s]-> %s\n", r.Source, r.Relationship, r.Target)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", memory.DefaultLimit, "result cap")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete every node and edge in a tenancy scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := engine.DeleteAll(ctx, filters()); err != nil {
				return err
			}
			fmt.Println("Scope deleted")
			return nil
		},
	}
}
