package main

import (
	"fmt"
	"time"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/index"
	"github.com/sandevgo/ceramicsrag/internal/service/ingest"
	"github.com/sandevgo/ceramicsrag/internal/service/ui"
	"github.com/sandevgo/ceramicsrag/pkg/tokens"
	"github.com/spf13/cobra"
)

var (
	buildOut       string
	buildOverwrite bool
	buildBatchSize int
	buildMaxTokens int
	buildOverlap   int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or inspect the document index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build <file|dir>...",
	Short: "Chunk, embed and store documents as an index artifact",
	Long: `Reads .txt, .md and .html files, splits them into token-bounded chunks,
embeds them with the configured embedding model and writes a SQLite index artifact.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		loadEnv(ctx)
		appCfg := config.NewAppConfig(ctx)
		provCfg := config.NewProviderConfig(ctx)

		embedder, err := newEmbedder(provCfg)
		if err != nil {
			return err
		}

		tok, err := tokens.NewTiktoken(appCfg.TokenEncoding)
		if err != nil {
			return err
		}

		files, err := ingest.Expand(args)
		if err != nil {
			return err
		}

		chunker := ingest.NewChunker(tok, ingest.ChunkerConfig{
			MaxTokens:     buildMaxTokens,
			OverlapTokens: buildOverlap,
		})
		stats, err := ingest.NewBuilder(embedder, chunker, buildBatchSize).Build(ctx, files, buildOut, buildOverwrite)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.UsageStyle.Render("✓ index written to "+stats.Path))
		fmt.Fprintf(out, "  files %d, chunks %d, dimensions %d, model %s, took %s\n",
			stats.Files, stats.Chunks, stats.Dimensions, stats.Model, stats.Elapsed.Round(time.Millisecond))
		return nil
	},
}

var indexInfoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show statistics of an index artifact",
	Long:  `Shows statistics of the artifact at path, or of the configured index (downloading it if needed).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		loadEnv(ctx)

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			p, err := resolveIndexPath(ctx, config.NewAppConfig(ctx), config.NewIndexConfig(ctx))
			if err != nil {
				return err
			}
			path = p
		}

		idx, err := index.Open(ctx, path, "")
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("Index"))
		fmt.Fprintf(out, "  %-16s %s\n", ui.DescStyle.Render("path"), path)
		fmt.Fprintf(out, "  %-16s %d\n", ui.DescStyle.Render("chunks"), idx.Size())
		fmt.Fprintf(out, "  %-16s %d\n", ui.DescStyle.Render("dimensions"), idx.Dimensions())
		fmt.Fprintf(out, "  %-16s %s\n", ui.DescStyle.Render("embedding model"), idx.EmbeddingModel())
		if !idx.BuiltAt().IsZero() {
			fmt.Fprintf(out, "  %-16s %s\n", ui.DescStyle.Render("built at"), idx.BuiltAt().Format(time.DateTime))
		}
		return nil
	},
}

func init() {
	defaults := ingest.DefaultChunkerConfig()
	indexBuildCmd.Flags().StringVarP(&buildOut, "out", "o", "index.db", "artifact path")
	indexBuildCmd.Flags().BoolVar(&buildOverwrite, "overwrite", false, "replace an existing artifact")
	indexBuildCmd.Flags().IntVar(&buildBatchSize, "batch-size", ingest.DefaultBatchSize, "texts per embedding request")
	indexBuildCmd.Flags().IntVar(&buildMaxTokens, "max-tokens", defaults.MaxTokens, "maximum tokens per chunk")
	indexBuildCmd.Flags().IntVar(&buildOverlap, "overlap", defaults.OverlapTokens, "tokens repeated between consecutive chunks")

	indexCmd.AddCommand(indexBuildCmd, indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}
