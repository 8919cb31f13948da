package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration values stored in config.toml.

Keys use dot notation, e.g. "retrieval.top_k" or "embedding.provider".`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// openConfigStore loads the config store on demand; config commands run
// without the full service stack.
func openConfigStore() (*configfile.ConfigStore, error) {
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return store, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}

	s := configfile.ResolveSettings(store)

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()
	cmd.Printf("Config file: %s\n", store.Path())
	cmd.Println()
	cmd.Println("[storage]")
	cmd.Printf("  driver:       %s\n", s.Storage.Driver)
	if s.Storage.DataDir != "" {
		cmd.Printf("  data_dir:     %s\n", s.Storage.DataDir)
	}
	if s.Storage.DatabaseURL != "" {
		cmd.Printf("  database_url: (set)\n")
	}
	cmd.Println()
	cmd.Println("[embedding]")
	cmd.Printf("  provider:   %s\n", s.Embedding.Provider)
	if s.Embedding.Model != "" {
		cmd.Printf("  model:      %s\n", s.Embedding.Model)
	}
	if s.Embedding.APIKey != "" {
		cmd.Printf("  api_key:    (set)\n")
	}
	cmd.Println()
	cmd.Println("[chunking]")
	cmd.Printf("  size:    %d\n", s.Chunking.Size)
	cmd.Printf("  overlap: %d\n", s.Chunking.Overlap)
	cmd.Println()
	cmd.Println("[retrieval]")
	cmd.Printf("  top_k:          %d\n", s.Retrieval.TopK)
	cmd.Printf("  min_similarity: %.2f\n", s.Retrieval.MinSimilarity)
	cmd.Printf("  overfetch:      %d\n", s.Retrieval.Overfetch)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}

	key, raw := args[0], args[1]

	// Store numbers and booleans typed so they read back correctly.
	var value any = raw
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}
