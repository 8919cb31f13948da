package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

var (
	queryTopK          int
	queryMinSimilarity float64
	queryJSON          bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the ingested documents",
	Long: `Embeds the question and returns the most similar stored chunks,
ranked by cosine similarity. Results below the similarity threshold are
dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "maximum number of results (default from config)")
	queryCmd.Flags().Float64Var(&queryMinSimilarity, "min-similarity", 0, "minimum cosine similarity (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()
	opts := domain.RetrieveOptions{
		TopK:          queryTopK,
		MinSimilarity: queryMinSimilarity,
	}

	results, err := retrievalService.Retrieve(ctx, question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}

	return outputQueryText(cmd, results)
}

func outputQueryJSON(cmd *cobra.Command, results []domain.RetrievedContext) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, results []domain.RetrievedContext) error {
	if len(results) == 0 {
		cmd.Println("No matching context found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] page %d (%.2f)\n", i+1, results[i].Page, results[i].Similarity)
		if results[i].SourceURL != "" {
			cmd.Printf("      Source: %s\n", results[i].SourceURL)
		}

		snippet := results[i].Content
		if len(snippet) > 300 {
			snippet = snippet[:300] + "..."
		}
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}

	return nil
}
