package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordofday/internal"
)

// Runner carries out the commands. It is created once the configuration
// has been loaded and closed when the command returns.
type Runner interface {
	Popup(ctx context.Context) error
	Daemon(ctx context.Context) error
	Show(ctx context.Context, w io.Writer) error
	Next(ctx context.Context, w io.Writer) error
	ListModels(ctx context.Context, w io.Writer) error

	HistoryList(ctx context.Context, w io.Writer, limit int, newestFirst bool) error
	HistorySave(ctx context.Context, w io.Writer) error
	HistoryRemove(ctx context.Context, w io.Writer, word string) error
	HistoryToggle(ctx context.Context, w io.Writer) error
	HistoryClear(ctx context.Context, w io.Writer) error
	HistoryExport(ctx context.Context, w io.Writer, format string) error

	Close() error
}

// RunnerFactory builds a Runner from the loaded configuration.
type RunnerFactory func(config *Config) (Runner, error)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordofday",
		Short: "English word of the day with translation and examples",
		Long: `wordofday shows one English word per day together with its
translation, part of speech and example sentences.

A new word is picked every local midnight, either by the background daemon
or by an open popup. Words can be saved to a history of up to 100 entries.

Examples:
  wordofday                       # Open the popup (default)
  wordofday show                  # Print the current word
  wordofday next                  # Skip to another word
  wordofday daemon                # Rotate the word every midnight
  wordofday history list          # Print saved words`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ListModels {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.ListModels(cmd.Context(), cmd.OutOrStdout())
				})
			}
			return withRunner(cmd, newRunner, func(r Runner) error {
				return r.Popup(cmd.Context())
			})
		},
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "popup",
			Short: "Open the word of the day popup",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.Popup(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "daemon",
			Short: "Rotate the word at every local midnight until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.Daemon(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the current word, picking one if there is none yet",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.Show(cmd.Context(), cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "next",
			Short: "Replace the current word with a new one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.Next(cmd.Context(), cmd.OutOrStdout())
				})
			},
		},
		createHistoryCommand(flags, newRunner),
	)

	return rootCmd
}

func createHistoryCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved words",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print saved words, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Limit < 0 {
				return fmt.Errorf("invalid limit: %d", flags.Limit)
			}
			return withRunner(cmd, newRunner, func(r Runner) error {
				return r.HistoryList(cmd.Context(), cmd.OutOrStdout(), flags.Limit, flags.NewestFirst)
			})
		},
	}
	listCmd.Flags().IntVarP(&flags.Limit, "limit", "n", 0, "Only show the most recent N entries (0 shows all)")
	listCmd.Flags().BoolVar(&flags.NewestFirst, "newest-first", false, "Print the most recent entry first")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history to a timestamped file in the archive directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, newRunner, func(r Runner) error {
				return r.HistoryExport(cmd.Context(), cmd.OutOrStdout(), flags.ExportFormat)
			})
		},
	}
	exportCmd.Flags().StringVarP(&flags.ExportFormat, "format", "f", flags.ExportFormat, "Export format (json or csv)")
	exportCmd.Flags().StringVar(&flags.ArchiveDir, "archive-dir", "", "Directory for exports (default $HOME/.local/state/wordofday/archive)")
	viper.BindPFlag("archive.directory", exportCmd.Flags().Lookup("archive-dir"))

	historyCmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "save",
			Short: "Save the current word",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.HistorySave(cmd.Context(), cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "remove WORD",
			Short: "Remove a saved word",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.HistoryRemove(cmd.Context(), cmd.OutOrStdout(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Save the current word, or remove it if it is already saved",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.HistoryToggle(cmd.Context(), cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all saved words",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, newRunner, func(r Runner) error {
					return r.HistoryClear(cmd.Context(), cmd.OutOrStdout())
				})
			},
		},
		exportCmd,
	)

	return historyCmd
}

func withRunner(cmd *cobra.Command, newRunner RunnerFactory, fn func(Runner) error) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}

	r, err := newRunner(config)
	if err != nil {
		return err
	}
	defer r.Close()

	// Usage is only useful for flag and argument errors
	cmd.SilenceUsage = true
	return fn(r)
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultStorage := filepath.Join(home, ".local", "state", "wordofday", "wordofday.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordofday.yaml)")
	cmd.PersistentFlags().StringVar(&flags.StoragePath, "db", defaultStorage, "SQLite database holding the current word and history")
	cmd.PersistentFlags().StringVar(&flags.PickerMode, "picker", flags.PickerMode, "Word source: static or remote")
	cmd.PersistentFlags().StringVar(&flags.WordsFile, "words", "", "Word list for the static picker (.json entries or one word per line)")
	cmd.PersistentFlags().StringVar(&flags.Provider, "provider", flags.Provider, "Enrichment provider: openrouter, openai or gemini")
	cmd.PersistentFlags().StringVar(&flags.Model, "model", "", "Enrichment model (default depends on provider)")
	cmd.PersistentFlags().StringVar(&flags.Language, "language", flags.Language, "Language to translate words into")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&flags.LogDevelopment, "log-dev", false, "Human readable console logs")

	// Local flags
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List chat models available for the configured provider")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("storage.path", cmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("picker.mode", cmd.PersistentFlags().Lookup("picker"))
	viper.BindPFlag("picker.words_file", cmd.PersistentFlags().Lookup("words"))
	viper.BindPFlag("enrich.provider", cmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("enrich.model", cmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("enrich.language", cmd.PersistentFlags().Lookup("language"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.development", cmd.PersistentFlags().Lookup("log-dev"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A .env in the working directory fills in API keys; missing is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wordofday" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wordofday")
	}

	// Environment variables
	viper.SetEnvPrefix("WORDOFDAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
