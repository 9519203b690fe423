package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"hybridd/pkg/types"
)

func askCmd(flags *rootFlags) *cobra.Command {
	var (
		capability  string
		maxTokens   int
		temperature float64
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "One-shot generation through the router",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			rt, err := buildRouter(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			resp, err := rt.Generate(ctx, types.GenerateRequest{
				Prompt:     strings.Join(args, " "),
				Capability: capability,
				Eco:        flags.eco,
				Offline:    flags.offline,
				Params: types.GenParams{
					MaxTokens:   maxTokens,
					Temperature: temperature,
				},
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Println(resp.Response)
			log.Info().Str("mode", string(resp.Mode)).Str("model", resp.Model).Msg("served")
			return nil
		},
	}
	cmd.Flags().StringVar(&capability, "capability", "", "task capability, e.g. chat or code")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum new tokens to generate")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}
