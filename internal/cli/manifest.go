package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the effective move manifest",
	Long: `Print the manifest a run would use, as YAML. Without --manifest this is the
built-in layout, a good starting point for a custom manifest file.

The manifest is validated after printing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(s.Manifest); err != nil {
				return err
			}
		} else {
			data, err := s.Manifest.Encode()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(out, string(data))
		}

		return s.Manifest.Validate()
	},
}
