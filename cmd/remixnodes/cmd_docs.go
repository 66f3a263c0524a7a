package main

import (
	"fmt"

	"github.com/richinsley/remix2go/docgen"
	"github.com/richinsley/remix2go/nodes"
	"github.com/spf13/cobra"
)

var (
	docsReadme  string
	docsSection string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Regenerate the node list of a README",
	Long: `Replaces the contents of the section of the README named by --section with the list of
nodes grouped by category. Without --readme the list is printed.`,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().StringVar(&docsReadme, "readme", "", "README to update")
	docsCmd.Flags().StringVar(&docsSection, "section", "## Nodes", "section header")
}

func runDocs(cmd *cobra.Command, _ []string) error {
	r := nodes.NewRegistry(newEnv(cfg))
	if docsReadme == "" {
		fmt.Fprint(cmd.OutOrStdout(), docgen.Render(r, docsSection))
		return nil
	}
	return docgen.UpdateReadme(docsReadme, r, docsSection)
}
