// Prune command for the gloop CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pruneKeep int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old compilations from the index",
	Long:  `Prune keeps the newest --keep compilations per tree and deletes the rest.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pruneKeep < 0 {
			fmt.Fprintln(os.Stderr, "prune: --keep must not be negative")
			os.Exit(exitUserError)
		}

		store, err := attachIndex()
		if err != nil {
			fmt.Fprintln(os.Stderr, "prune:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		deleted, err := store.Prune(pruneKeep)
		if err != nil {
			fmt.Fprintln(os.Stderr, "prune:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("pruned %d compilation(s)\n", deleted)
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 10, "compilations to keep per tree")
}
