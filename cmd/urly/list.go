package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"urly/internal/models"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the stored subscriptions",
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

			subs, err := c.registry.ListAll(context.Background())
			if err != nil {
				return err
			}

			printSubscriptions(cmd.OutOrStdout(), subs)
			return nil
		},
	}
}

func printSubscriptions(out io.Writer, subs []models.Subscription) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTHRESHOLD\tLAST COUNT\tLAST CHECKED")
	for _, s := range subs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.DisplayName(), s.Threshold, formatCount(s.LastCount), formatTime(s.LastChecked))
	}
	w.Flush()
}

func formatCount(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
