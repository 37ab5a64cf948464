package main

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/pokedex/pkg/render"
	"github.com/Sternrassler/pokedex/pkg/viewer"
	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var (
		pages int
		query string
		types []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Load listing pages and print the filtered grid",
		Long: `List loads the given number of pages (the first page holds 60 entries,
every further page 30), applies the query and type filters and prints
the resulting grid. A query matches names by substring, case-insensitive,
or a number exactly. Several --type flags must all match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.session

			// No screen here: the sentinel counts as visible until the
			// requested number of pages is in.
			loaded := 1
			more := viewer.VisibilityFunc(func() bool {
				if loaded >= pages {
					return false
				}
				loaded++
				return true
			})

			outcomes := s.Autoload(cmd.Context(), viewer.TriggerBoot, more)
			if last := outcomes[len(outcomes)-1]; last.Err != nil && !last.Skipped {
				return fmt.Errorf("load page at offset %d: %w", last.Offset, last.Err)
			}

			s.SetQueryNow(query)
			for _, t := range types {
				t = strings.ToLower(strings.TrimSpace(t))
				if !s.Criteria().Selected(t) {
					s.ToggleTag(t)
				}
			}

			styles := render.DefaultStyles()
			w := cmd.OutOrStdout()
			for _, line := range styles.GridLines(render.SessionGrid(s), -1) {
				if line != "" {
					fmt.Fprintln(w, line)
				}
			}

			snap := s.Snapshot()
			summary := fmt.Sprintf("%d shown, %d loaded", snap.Filtered, snap.Loaded)
			if snap.Total != nil {
				summary += fmt.Sprintf(" of %d", *snap.Total)
			}
			fmt.Fprintln(w, styles.ID.Render(summary))
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().StringVarP(&query, "query", "q", "", "name substring or exact number")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "required type; repeat for several")
	return cmd
}
