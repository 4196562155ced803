package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"Plant3D/internal/tools"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured folders and available external programs",
	RunE: func(cmd *cobra.Command, args []string) error {
		caps := tools.Detect(cfg.Programs)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "geometry variant\t%s\n", cfg.Variant)
		fmt.Fprintf(tw, "input\t%s\n", cfg.Paths.Input)
		fmt.Fprintf(tw, "extracted\t%s\n", cfg.Paths.Extracted)
		fmt.Fprintf(tw, "models\t%s\n", cfg.Paths.Models)
		fmt.Fprintf(tw, "reports\t%s\n", cfg.Paths.Reports)
		fmt.Fprintf(tw, "uploads\t%s\n", cfg.Paths.Uploads)
		for _, p := range []struct {
			name string
			prog tools.Program
		}{{"cad", caps.CAD}, {"game engine", caps.GameEngine}} {
			state := "available"
			if !p.prog.Available {
				state = "unavailable (" + p.prog.Reason + ")"
			}
			fmt.Fprintf(tw, "%s\t%s %s\n", p.name, state, p.prog.Path)
		}
		return tw.Flush()
	},
}
