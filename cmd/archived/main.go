// Command archived runs one ArchiveChain node process: full-archive,
// light-storage, relay or gateway, per the role named in its config file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"archivechain/core"
	"archivechain/pkg/config"
)

func main() {
	root := &cobra.Command{Use: "archived"}
	root.AddCommand(startCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(diagnoseCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start a node using the given configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			a.logger.WithField("role", cfg.Role.Kind).Info("archived starting")
			return a.run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config/node.yaml", "path to node config file")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print node config schema version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.Version)
		},
	}
}

// diagnoseCmd exposes operational diagnostics that don't require a running
// node, such as estimating consensus safety margins before tuning
// validators-per-round in the field.
func diagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "diagnose"}
	cmd.AddCommand(bftCmd())
	return cmd
}

func bftCmd() *cobra.Command {
	var n, f, rounds int
	cmd := &cobra.Command{
		Use:   "bft",
		Short: "estimate consensus safety via Monte Carlo simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 || f < 0 || rounds <= 0 {
				return core.ErrValidation("diagnose bft", "n and rounds must be positive, f non-negative")
			}
			p := core.SimulateBFT(n, f, rounds)
			fmt.Printf("agreement probability over %d rounds with n=%d f=%d: %.4f\n", rounds, n, f, p)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 7, "total validators")
	cmd.Flags().IntVar(&f, "f", 2, "byzantine validators")
	cmd.Flags().IntVar(&rounds, "rounds", 10000, "simulation rounds")
	return cmd
}
