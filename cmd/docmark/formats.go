package main

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/tsawler/docmark"
	"github.com/tsawler/docmark/format"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Supported formats:")
			for _, ext := range docmark.SupportedExtensions() {
				f := format.Detect("x" + ext)
				fmt.Fprintf(out, "  %s %-6s %s\n", color.Green.Sprint("-"), ext, color.Gray.Sprint(f.MIMEType()))
			}
			return nil
		},
	}
}
