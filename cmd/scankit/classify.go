package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/scankit/security"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <input>",
		Short: "Classify a document's type, security features and risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := a.loadPages(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := security.Analyze(pages[0])
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
