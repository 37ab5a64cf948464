package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Sternrassler/pokedex/pkg/pokeapi"
	"github.com/Sternrassler/pokedex/pkg/render"
	"github.com/spf13/cobra"
)

func newShowCmd(flags *rootFlags) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print the details of one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}

			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			detail, err := a.session.Overlay().Open(cmd.Context(), id)
			if errors.Is(err, pokeapi.ErrNotFound) {
				return fmt.Errorf("no entry with id %d", id)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), render.DefaultStyles().Detail(render.Detail(detail), width))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 72, "box width in columns")
	return cmd
}
