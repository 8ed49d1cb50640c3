package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alimpfard/readline"
	"github.com/alimpfard/readline/internal/log"
	"github.com/alimpfard/readline/sqlitehistory"
)

// ExitInterrupted is the status for a session ended with Ctrl-C.
const ExitInterrupted = 130

var (
	cfgFile string
	cfg     replConfig
)

type replConfig struct {
	readline.Config `mapstructure:",squash"`

	HistoryFile    string `mapstructure:"history_file"`
	HistoryBackend string `mapstructure:"history_backend"`
	PromptColor    string `mapstructure:"prompt_color"`
	Prompt         string `mapstructure:"prompt"`
	DebugLog       string `mapstructure:"debug_log"`
}

var rootCmd = &cobra.Command{
	Use:          "readline-demo",
	Short:        "An interactive prompt built on the readline editor",
	Long:         `A small REPL that echoes what you type, with history, completion and incremental search.`,
	SilenceUsage: true,
	RunE:         runRepl,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/readline-demo/config.yaml)")
	rootCmd.Flags().String("history", "", "history file to load and save")
	rootCmd.Flags().String("history-backend", "file", "history storage: file or sqlite")
	rootCmd.Flags().String("word-erase", string(readline.WordEraseModeSpace), "Ctrl-W behaviour: space or word")
	rootCmd.Flags().String("delimiters", readline.DefaultWordDelimiters, "word delimiter characters")
	rootCmd.Flags().String("prompt", "> ", "prompt text")
	rootCmd.Flags().String("prompt-color", "", "prompt colour, a name or #rrggbb")
	rootCmd.Flags().String("debug-log", "", "write debug log to this file")

	_ = viper.BindPFlag("history_file", rootCmd.Flags().Lookup("history"))
	_ = viper.BindPFlag("history_backend", rootCmd.Flags().Lookup("history-backend"))
	_ = viper.BindPFlag("word_erase_mode", rootCmd.Flags().Lookup("word-erase"))
	_ = viper.BindPFlag("word_delimiters", rootCmd.Flags().Lookup("delimiters"))
	_ = viper.BindPFlag("prompt", rootCmd.Flags().Lookup("prompt"))
	_ = viper.BindPFlag("prompt_color", rootCmd.Flags().Lookup("prompt-color"))
	_ = viper.BindPFlag("debug_log", rootCmd.Flags().Lookup("debug-log"))

	viper.SetEnvPrefix("READLINE")
	_ = viper.BindEnv("debug_log")
}

func initConfig() {
	defaults := readline.DefaultConfig()
	viper.SetDefault("word_delimiters", defaults.WordDelimiters)
	viper.SetDefault("word_erase_mode", string(defaults.WordEraseMode))
	viper.SetDefault("history_capacity", defaults.HistoryCapacity)
	viper.SetDefault("completion_query_items", defaults.CompletionQueryItems)
	viper.SetDefault("page_completions", defaults.PageCompletions)
	viper.SetDefault("allow_unicode_input", true)
	viper.SetDefault("history_backend", "file")
	viper.SetDefault("prompt", "> ")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(home, ".config", "readline-demo"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// openHistory picks the persister for the configured backend. The returned
// closer is never nil.
func openHistory(c replConfig) (readline.HistoryPersister, func(), error) {
	switch c.HistoryBackend {
	case "", "file":
		return readline.FileHistory{Path: c.HistoryFile}, func() {}, nil
	case "sqlite":
		store, err := sqlitehistory.Open(c.HistoryFile)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history database: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		log.Error(log.CatConfig, "unknown history backend", "backend", c.HistoryBackend)
		return nil, nil, fmt.Errorf("unknown history backend %q", c.HistoryBackend)
	}
}

var commands = []readline.Completion{
	{Text: "help", Help: "show commands"},
	{Text: "history", Help: "list history"},
	{Text: "hello", Help: "say hello"},
	{Text: "clear", Help: "clear history"},
	{Text: "exit", Help: "leave"},
}

func completeCommand(line string) []readline.Completion {
	if strings.ContainsAny(strings.TrimLeft(line, " "), " ") {
		return nil
	}
	return commands
}

func runRepl(cmd *cobra.Command, _ []string) error {
	if cfg.DebugLog != "" {
		cleanup, err := log.Init(cfg.DebugLog)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer cleanup()
	}
	log.Info(log.CatConfig, "configuration loaded",
		"file", viper.ConfigFileUsed(),
		"history_backend", cfg.HistoryBackend,
		"word_erase_mode", cfg.WordEraseMode)

	if cfg.PromptColor != "" {
		color, err := readline.ParseColor(cfg.PromptColor)
		if err != nil {
			return fmt.Errorf("invalid prompt colour: %w", err)
		}
		cfg.PromptStyle = readline.Style{ForegroundColor: color, Bold: true}
	}

	editor := readline.NewEditorWithConfig(readline.NewTTYTerminal(), cfg.Config)
	editor.SetTabCompletionHandler(completeCommand)

	if cfg.HistoryFile != "" {
		persister, closeHistory, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeHistory()
		if err := editor.LoadHistory(persister); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading history: %w", err)
		}
		defer func() {
			if err := editor.SaveHistory(persister); err != nil {
				fmt.Fprintf(os.Stderr, "saving history: %v\n", err)
			}
		}()
	}

	out := cmd.OutOrStdout()
	for {
		line, err := editor.GetLine(cfg.Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(line) {
		case "exit":
			return nil
		case "help":
			for _, c := range commands {
				fmt.Fprintf(out, "%-8s %s\n", c.Text, c.Help)
			}
		case "history":
			for i, entry := range editor.History() {
				fmt.Fprintf(out, "%5d  %s\n", i+1, entry)
			}
		case "clear":
			editor.ClearHistory()
		case "hello":
			fmt.Fprintln(out, "hello!")
		default:
			fmt.Fprintf(out, "you typed: %q\n", line)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
