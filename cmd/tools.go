package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/allocation"
	"github.com/okian/fairway/internal/domain/picks"
)

// newAllocateCmd runs the stake calculator without a bot.
func newAllocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "allocate <units>u <unit value> <name> <N>/1, ...",
		Short:   "Split a budget across odds so every line pays the same",
		Example: "  fairway allocate 1u 100 Scheffler 80/1, McIlroy 50/1, Aberg 120/1",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := allocation.ParseRequest(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("%w\n%s", err, allocation.Usage("fairway "))
			}
			plan, err := allocation.Allocate(req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), allocation.Format(plan))
			return err
		},
	}
}

// newPicksCmd prints a stored picks file the way the reveal would.
func newPicksCmd() *cobra.Command {
	var zone string
	cmd := &cobra.Command{
		Use:   "picks <path/to/picks.json>",
		Short: "Print the pending picks from a picks file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(zone)
			if err != nil {
				return err
			}
			dir, name := filepath.Split(args[0])
			if dir == "" {
				dir = "."
			}
			store := repository.NewFileStore(dir, repository.WithFileName(repository.CollectionPicks, name))
			reg, err := picks.New(context.Background(), store, picks.WithLocation(loc))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), picks.FormatReveal(reg.All(), loc))
			return err
		},
	}
	cmd.Flags().StringVar(&zone, "timezone", "America/New_York", "zone timestamps are shown in")
	return cmd
}
