package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/medtravel"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", medtravel.Name, medtravel.FullVersion())
			if medtravel.GitCommit != "unknown" && medtravel.GitCommit != "" {
				fmt.Fprintf(w, "  commit:  %s\n", medtravel.GitCommit)
			}
			if medtravel.BuildDate != "unknown" && medtravel.BuildDate != "" {
				fmt.Fprintf(w, "  built:   %s\n", medtravel.BuildDate)
			}
		},
	}
}
