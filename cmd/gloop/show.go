// Show command for the gloop CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isdood/gloop/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <compilation-id>",
	Short: "Display a recorded compilation with commands and diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compilationID := args[0]

		store, err := attachIndex()
		if err != nil {
			fmt.Fprintln(os.Stderr, "show:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		comp, err := store.GetCompilation(compilationID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "compilation %q not found\n", compilationID)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "get compilation:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(comp, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("ID:       %s\n", comp.CompilationID)
		fmt.Printf("Root:     %s\n", comp.Root)
		fmt.Printf("Hash:     %s\n", comp.ContentHash)
		fmt.Printf("Strict:   %t\n", comp.Strict)
		fmt.Printf("Compiled: %s\n", comp.CreatedAt.Local().Format("2006-01-02 15:04:05"))

		if len(comp.Commands) > 0 {
			fmt.Println("\nCommands:")
			for _, c := range comp.Commands {
				fmt.Printf("  %d: %s    (from %s)\n", c.Position, c.Shell, c.Source)
			}
		}
		if len(comp.Diagnostics) > 0 {
			fmt.Println("\nDiagnostics:")
			for _, d := range comp.Diagnostics {
				fmt.Printf("  %s\n", d.String())
			}
		}
		return nil
	},
}
