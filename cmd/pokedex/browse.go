package main

import (
	"github.com/Sternrassler/pokedex/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd(flags *rootFlags) *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the full-screen browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The browser owns the terminal; logs go to log.file or nowhere.
			a, err := newApp(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(cmd.Context(), a.session, tui.Options{
				TriggerMargin: a.cfg.Paging.TriggerMargin,
				NoSentinel:    manual,
			})
		},
	}

	cmd.Flags().BoolVar(&manual, "manual", false, "load further pages only with the load-more control")
	return cmd
}
