// Compile command for the gloop CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isdood/gloop/internal/manifest"
)

var (
	compileOverlays []string
	compileFilter   string
	compileSequence string
	compileStrict   bool
	compileSave     bool
	compileOutput   string
	compileFormat   string
)

var compileCmd = &cobra.Command{
	Use:   "compile <dir>",
	Short: "Compile a directory tree into command lines",
	Long: `Compile scans the directory tree, lexes entry names following the gloop
naming grammar, and prints the resulting program as numbered shell lines.

Selection:
  --filter glob     keep only commands with an argv token matching glob
  --sequence N..M   keep only top-level sequences in the range (either side
                    of .. may be omitted; a bare N selects exactly N)

Overlays merge over the base tree by sequence path: matching directories
merge recursively, any other match is replaced by the overlay entry.

Example:
  gloop compile ./deploy
  gloop compile ./deploy --overlay ./deploy-prod --filter 'nginx*'
  gloop compile ./deploy --sequence 2..5 --save`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compiler := newCompiler(compileStrict, compileFilter, compileSequence, compileOverlays)

		comp, err := compiler.Compile(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "compile:", err)
			os.Exit(exitUserError)
		}

		printDiagnostics(comp.Diagnostics)

		if compileSave {
			store, err := attachIndex()
			if err != nil {
				fmt.Fprintln(os.Stderr, "compile:", err)
				os.Exit(exitSysError)
			}
			defer store.Detach()

			res, err := store.SaveCompilation(comp)
			if err != nil {
				fmt.Fprintln(os.Stderr, "save compilation:", err)
				os.Exit(exitSysError)
			}
			if res.Saved {
				fmt.Fprintln(os.Stderr, "saved compilation", res.CompilationID)
			} else {
				fmt.Fprintln(os.Stderr, "unchanged since compilation", res.CompilationID)
			}
		}

		if compileOutput != "" {
			f, err := os.Create(compileOutput)
			if err != nil {
				fmt.Fprintln(os.Stderr, "compile:", err)
				os.Exit(exitSysError)
			}
			defer f.Close()
			if err := manifest.Write(f, comp, compileFormat); err != nil {
				fmt.Fprintln(os.Stderr, "write manifest:", err)
				os.Exit(exitSysError)
			}
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

		for _, c := range comp.Commands {
			fmt.Printf("%d: %s\n", c.Position, c.Shell)
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringArrayVar(&compileOverlays, "overlay", nil, "overlay tree merged over the base (repeatable, applied left to right)")
	compileCmd.Flags().StringVar(&compileFilter, "filter", "", "keep only commands with an argv token matching this glob")
	compileCmd.Flags().StringVar(&compileSequence, "sequence", "", "keep only top-level sequences in range N..M")
	compileCmd.Flags().BoolVar(&compileStrict, "strict", false, "fail on warnings and malformed names")
	compileCmd.Flags().BoolVar(&compileSave, "save", false, "record the compilation in the index")
	compileCmd.Flags().StringVar(&compileOutput, "output", "", "write a manifest to this file")
	compileCmd.Flags().StringVar(&compileFormat, "format", manifest.FormatJSON, "manifest format: json or yaml")
}
