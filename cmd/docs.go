package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate man pages or markdown documentation",
	Hidden: true,
	Args:   usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("output")

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}

		switch format {
		case "man":
			header := &doc.GenManHeader{Title: "NORMSCAN", Section: "1", Source: "normscan " + version}
			return doc.GenManTree(rootCmd, header, dir)
		case "markdown":
			return doc.GenMarkdownTree(rootCmd, dir)
		default:
			return usageError(fmt.Sprintf("invalid docs format %q", format), "Use man or markdown")
		}
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().String("format", "markdown", "documentation format (man, markdown)")
	docsCmd.Flags().String("output", "docs", "output directory")
}
