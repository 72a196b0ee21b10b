// Package cli implements the canonica command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psorokin/canonica/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "canonica",
	Short: "Canonica - backstory consistency checking against novel text",
	Long: `Canonica verifies whether an invented character backstory is consistent
with the full text of the novel it claims to belong to.

It chunks the novel, embeds the chunks into a vector index, extracts the
backstory's atomic claims, retrieves the most relevant passages for each
claim, and asks an LLM whether the passages contradict the claim. The
per-claim verdicts are aggregated into a single consistent/contradict
prediction with a supporting rationale.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("canonica v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.canonica/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.canonica")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CANONICA_*
	viper.SetEnvPrefix("CANONICA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration: defaults, overridden by
// the config file, overridden again by command flags in each command.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.embedding_model"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetFloat64("llm.rate_per_second"); v > 0 {
		cfg.LLM.RatePerSecond = v
	}
	if v := viper.GetInt("chunking.chunk_size"); v > 0 {
		cfg.Chunking.ChunkSize = v
	}
	if v := viper.GetInt("chunking.overlap"); v > 0 {
		cfg.Chunking.Overlap = v
	}
	if v := viper.GetInt("retrieval.top_k"); v > 0 {
		cfg.Retrieval.TopK = v
	}
	if v := viper.GetInt("verify.min_contradictions"); v > 0 {
		cfg.Verify.MinContradictions = v
	}
	if v := viper.GetFloat64("verify.min_confidence"); v > 0 {
		cfg.Verify.MinConfidence = v
	}
	if v := viper.GetString("books.dir"); v != "" {
		cfg.Books.Dir = v
	}
	if v := viper.GetDuration("concurrency.case_delay"); v > 0 {
		cfg.Concurrency.CaseDelay = v
	}

	cfg.Output.Verbose = verbose
	return cfg
}

// resolveAPIKey pulls the provider credential from the environment.
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "gemini", "google":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
