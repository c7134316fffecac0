// History command for the gloop CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/isdood/gloop/pkg/types"
)

var (
	historyRoot  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded compilations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachIndex()
		if err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		filter := types.ListFilter{Limit: historyLimit}
		if historyRoot != "" {
			abs, err := filepath.Abs(historyRoot)
			if err != nil {
				fmt.Fprintln(os.Stderr, "history:", err)
				os.Exit(exitUserError)
			}
			filter.Root = abs
		}

		comps, err := store.ListCompilations(filter)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list compilations:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(comps, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
			return nil
		}

		for _, c := range comps {
			fmt.Printf("%s  %s  %2d commands  %s\n",
				c.CompilationID,
				c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				len(c.Commands),
				c.Root)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyRoot, "root", "", "only compilations of this tree")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum compilations to list (0 = no limit)")
}
