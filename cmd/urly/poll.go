package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"urly/internal/monitor"
)

func newPollCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run one poll cycle and exit, for use from an external scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			c, err := setup(cfg)
			if err != nil {
				return err
			}
			defer c.store.Close()

			n, err := newNotifier(cfg, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report := monitor.New(c.registry, c.scrapers, n).RunCycle(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "checked=%d notified=%d failed=%d\n", report.Checked, report.Notified, report.Failed)
			return nil
		},
	}
}
