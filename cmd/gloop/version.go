// Version command for the gloop CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isdood/gloop/pkg/gloop"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gloop version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gloop", gloop.Version)
	},
}
