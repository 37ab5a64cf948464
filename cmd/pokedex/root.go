package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	cfgFile string
	verbose bool
	opsAddr string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "pokedex",
		Short: "Browse the PokeAPI catalog from the terminal",
		Long: `Pokedex pages through the PokeAPI species listing, filters it by name,
number and type, and shows the details of a single entry.

Without a subcommand the full-screen browser starts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.cfgFile, "config", "pokedex.yml", "config file path")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&flags.opsAddr, "ops-addr", "", "serve /healthz, /metrics and /debug/session on this address")

	browse := newBrowseCmd(flags)
	root.RunE = browse.RunE
	root.Flags().AddFlagSet(browse.Flags())

	root.AddCommand(browse, newListCmd(flags), newShowCmd(flags))
	return root
}
