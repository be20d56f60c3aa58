package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/godot-reorg/reorg/internal/engine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every file is at its new location",
	Long: `Check the project against the manifest: every destination must exist and no
source may be left at its old location.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(true)
		if err != nil {
			return err
		}

		eng := newEngine(s, nil)
		result, err := eng.Verify(context.Background(), &engine.VerifyRequest{
			Root:     s.Root,
			Manifest: s.Manifest,
		})
		if err != nil && !errors.Is(err, engine.ErrVerification) {
			return err
		}

		if jsonOutput {
			if jsonErr := outputJSON(result); jsonErr != nil {
				return jsonErr
			}
			return err
		}

		checks := result.Checks
		if len(checks.MissingDestinations) > 0 {
			PrintSection("Missing Files")
			PrintList(checks.MissingDestinations, 1)
		}
		if len(checks.LeftoverSources) > 0 {
			PrintSection("Old Files Still In Place")
			PrintList(checks.LeftoverSources, 1)
		}
		if checks.OK() {
			PrintSuccess("All files moved successfully!")
		}
		return err
	},
}
