// Run command for the gloop CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/isdood/gloop/internal/runner"
	"github.com/isdood/gloop/pkg/types"
)

var (
	runOverlays []string
	runFilter   string
	runSequence string
	runStrict   bool
	runCommand  int
	runDryRun   bool
	runShell    bool
	runTimeout  time.Duration
	runWorkdir  string
)

var runCmd = &cobra.Command{
	Use:   "run <dir>",
	Short: "Compile a directory tree and execute one command",
	Long: `Run compiles the tree and executes the selected command. With a single
compiled command no selection is needed; otherwise pick one with --command N
(N is the 1-based program position).

By default the command's argv is passed straight to exec with no shell in
between. --shell runs the POSIX-quoted rendering through "sh -c" instead.
The child's exit code becomes gloop's exit code.

Example:
  gloop run ./maintenance --dry-run
  gloop run ./deploy --command 2 --timeout 30s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compiler := newCompiler(runStrict, runFilter, runSequence, runOverlays)

		comp, err := compiler.Compile(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "run:", err)
			os.Exit(exitUserError)
		}
		printDiagnostics(comp.Diagnostics)

		var selected *types.Command
		switch {
		case len(comp.Commands) == 0:
			fmt.Fprintln(os.Stderr, "run: program is empty")
			os.Exit(exitUserError)
		case runCommand > 0:
			for i := range comp.Commands {
				if comp.Commands[i].Position == runCommand {
					selected = &comp.Commands[i]
					break
				}
			}
			if selected == nil {
				fmt.Fprintf(os.Stderr, "run: no command at position %d (program has %d)\n", runCommand, len(comp.Commands))
				os.Exit(exitUserError)
			}
		case len(comp.Commands) == 1:
			selected = &comp.Commands[0]
		default:
			fmt.Fprintf(os.Stderr, "run: program has %d commands; pick one with --command N\n", len(comp.Commands))
			os.Exit(exitUserError)
		}

		if runDryRun {
			fmt.Println(selected.Shell)
			return nil
		}

		logger.Debug("executing compiled command")
		err = runner.Run(cmd.Context(), *selected, runner.Options{
			Shell:   runShell,
			Dir:     runWorkdir,
			Timeout: runTimeout,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		})
		if err != nil {
			var exitErr *runner.ExitError
			if errors.As(err, &exitErr) {
				os.Exit(exitErr.Code)
			}
			fmt.Fprintln(os.Stderr, "run:", err)
			os.Exit(exitSysError)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runOverlays, "overlay", nil, "overlay tree merged over the base (repeatable)")
	runCmd.Flags().StringVar(&runFilter, "filter", "", "keep only commands with an argv token matching this glob")
	runCmd.Flags().StringVar(&runSequence, "sequence", "", "keep only top-level sequences in range N..M")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "fail on warnings and malformed names")
	runCmd.Flags().IntVar(&runCommand, "command", 0, "program position of the command to execute")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the command instead of executing it")
	runCmd.Flags().BoolVar(&runShell, "shell", false, "execute via sh -c on the quoted rendering")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "kill the command after this duration")
	runCmd.Flags().StringVar(&runWorkdir, "workdir", "", "working directory for the command")
}
