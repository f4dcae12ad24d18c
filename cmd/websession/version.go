package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/websession"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of websession",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("websession version %s\n", strings.TrimSpace(websession.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
