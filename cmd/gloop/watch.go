// Watch command for the gloop CLI.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/isdood/gloop/internal/watch"
	"github.com/isdood/gloop/pkg/types"
)

var (
	watchOverlays []string
	watchFilter   string
	watchSequence string
	watchStrict   bool
	watchSave     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Recompile the tree whenever it changes",
	Long: `Watch compiles the tree, then recompiles every time entries are added,
renamed, or removed. Each changed program is printed to stdout; with --save
it is also recorded in the index. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compiler := newCompiler(watchStrict, watchFilter, watchSequence, watchOverlays)

		var idx types.Index
		if watchSave {
			store, err := attachIndex()
			if err != nil {
				fmt.Fprintln(os.Stderr, "watch:", err)
				os.Exit(exitSysError)
			}
			defer store.Detach()
			idx = store
		}

		watcher, err := watch.New(args[0], watch.Options{
			Compiler: compiler,
			Logger:   logger,
			Index:    idx,
			OnProgram: func(comp *types.Compilation) {
				printDiagnostics(comp.Diagnostics)
				for _, c := range comp.Commands {
					fmt.Printf("%d: %s\n", c.Position, c.Shell)
				}
			},
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "watch:", err)
			os.Exit(exitSysError)
		}

		if err := watcher.Start(cmd.Context()); err != nil {
			fmt.Fprintln(os.Stderr, "watch:", err)
			os.Exit(exitSysError)
		}
		defer watcher.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringArrayVar(&watchOverlays, "overlay", nil, "overlay tree merged over the base (repeatable)")
	watchCmd.Flags().StringVar(&watchFilter, "filter", "", "keep only commands with an argv token matching this glob")
	watchCmd.Flags().StringVar(&watchSequence, "sequence", "", "keep only top-level sequences in range N..M")
	watchCmd.Flags().BoolVar(&watchStrict, "strict", false, "fail on warnings and malformed names")
	watchCmd.Flags().BoolVar(&watchSave, "save", false, "record changed compilations in the index")
}
