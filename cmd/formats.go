package cmd

import (
	"io"
	"sort"

	"github.com/deploymenttheory/go-crunch/internal/extension"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// formatsCmd lists the extensions crunch recognizes
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported formats and shorthands",
	Run: func(cmd *cobra.Command, args []string) {
		writeFormats(cmd.OutOrStdout())
	},
}

func writeFormats(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Extension", "Format", "Kind", "Expands to"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, f := range extension.Formats() {
		kind := "stream"
		if f.IsArchive() {
			kind = "archive"
		}
		table.Append([]string{"." + f.Token(), f.String(), kind, ""})
	}

	shorthands := extension.Shorthands()
	tokens := make([]string, 0, len(shorthands))
	for token := range shorthands {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		table.Append([]string{"." + token, "shorthand", "archive", "." + shorthands[token].String()})
	}

	table.Render()
}
