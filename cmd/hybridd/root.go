package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hybridd/internal/config"
)

// rootFlags are shared by serve and ask; they map 1:1 onto Config fields.
type rootFlags struct {
	configPath string
	logLevel   string
	offline    bool
	eco        bool
	model      string
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "hybridd",
		Short:         "Hybrid inference router with response caching",
		Long:          "hybridd routes generation requests between a cached response store, an on-device model runtime and a hosted chat-completion API, based on connectivity, battery and memory.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config file (.yaml/.json/.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.offline, "offline", false, "disable the remote backend entirely")
	pf.BoolVar(&flags.eco, "eco", false, "prefer the smallest eligible model")
	pf.StringVar(&flags.model, "model", "", "default model name")

	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(askCmd(flags))
	return cmd
}

// loadConfig reads the config file (when given), applies defaults and folds
// in the CLI flag overrides.
func loadConfig(flags *rootFlags) (config.Config, error) {
	var cfg config.Config
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg = cfg.ApplyDefaults()
	if flags.offline {
		cfg.ForceOffline = true
	}
	if flags.eco {
		cfg.PreferOffline = true
		cfg.SelectionPolicy = config.SelectSmallest
	}
	if flags.model != "" {
		cfg.DefaultModel = flags.model
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}
