package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// reindexSmokeQuestion exercises the full retrieval path after a
// rebuild, so an incompatible embedding model shows up immediately
// instead of on the first homeowner question.
const reindexSmokeQuestion = "Am I allowed to install solar panels?"

var flagSkipSmoke bool

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from stored documents",
	Long: `Wipes the vector index and re-ingests every PDF in the documents
directory. Run this after changing the embedding provider or model.`,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().BoolVar(&flagSkipSmoke, "skip-smoke-test", false, "skip the test query after rebuilding")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()

	paths, err := a.docs.List(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(paths) == 0 {
		cmd.Println("No PDFs found in the documents directory; nothing to index.")
		return nil
	}

	if err := a.index.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}

	var failed int
	for _, path := range paths {
		res, err := a.ingestion.IngestFile(ctx, path)
		if err != nil {
			failed++
			cmd.PrintErrf("  FAILED %s: %v\n", filepath.Base(path), err)
			continue
		}
		if res.Warning != "" {
			cmd.Printf("  %s: %s\n", res.Filename, res.Warning)
			continue
		}
		cmd.Printf("  %s: %d chunks\n", res.Filename, res.Chunks)
	}
	cmd.Printf("Reindexed %d of %d documents.\n", len(paths)-failed, len(paths))
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to reindex", failed)
	}

	if flagSkipSmoke {
		return nil
	}

	answer, err := a.answers.Ask(ctx, reindexSmokeQuestion)
	if err != nil {
		return fmt.Errorf("smoke-test query failed: %w", err)
	}
	cmd.Printf("\nSmoke test: %q\n%s\n", reindexSmokeQuestion, answer.Text)
	for _, src := range answer.Sources {
		cmd.Printf("  source: %s\n", src)
	}
	return nil
}
