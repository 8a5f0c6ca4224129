package main

import (
	"fmt"
	"os"

	"github.com/pevans/opinionscraper/report"
	"github.com/pevans/opinionscraper/results"
	"github.com/spf13/cobra"
)

func newResultsCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect saved session results",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved session results",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := results.NewStore(global.resultsDir)
				if err != nil {
					return err
				}

				listing, err := store.List()
				if err != nil {
					return err
				}

				for _, readErr := range listing.Errors {
					fmt.Fprintf(os.Stderr, "Warning: skipping %s\n", readErr.Error())
				}

				report.WriteList(cmd.OutOrStdout(), listing.Reports)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one saved session result (IDs may be shortened)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := results.NewStore(global.resultsDir)
				if err != nil {
					return err
				}

				r, err := store.Find(args[0])
				if err != nil {
					return err
				}
				if r == nil {
					return fmt.Errorf("no result with ID %s", args[0])
				}

				out := cmd.OutOrStdout()
				report.WriteSession(out, *r)
				report.WriteSummary(out, r.Session, len(r.Articles))
				return nil
			},
		},
	)

	return cmd
}
