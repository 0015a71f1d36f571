package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/profilejoteam/profilejo-website-sub000/internal/classifier"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the profile analysis of a form snapshot",
		Long: `Classify a form snapshot offline and print the analysis as JSON.

The snapshot is read from --file, or from stdin when --file is "-".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			var r io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening snapshot: %w", err)
				}
				defer f.Close()
				r = f
			}

			var snap profile.FormSnapshot
			if err := json.NewDecoder(r).Decode(&snap); err != nil {
				return fmt.Errorf("decoding snapshot: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(classifier.Classify(snap))
		},
	}
	cmd.Flags().StringP("file", "f", "-", "snapshot JSON file")
	return cmd
}
