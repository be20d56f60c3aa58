package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godot-reorg/reorg/internal/engine"
	"github.com/godot-reorg/reorg/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a run would do without changing anything",
	Long: `Validate the manifest and check the project tree.

Lists the folders to create, the files to move, sources that are missing
(skipped with a warning) and conflicts that would stop the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(true)
		if err != nil {
			return err
		}

		eng := newEngine(s, nil)
		result, err := eng.Plan(context.Background(), &engine.PlanRequest{
			Root:     s.Root,
			Manifest: s.Manifest,
			Force:    force,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(result); err != nil {
				return err
			}
		} else {
			PrintLabelValue("Project", result.Root)
			PrintLabelValue("Reference rules", fmt.Sprintf("%d", result.Rules))
			PrintLabelValue("Config fragments", fmt.Sprintf("%d", result.Fragments))
			printPlan(result.Plan)
		}

		if result.Plan.HasConflicts() {
			if !jsonOutput {
				printConflicts(result.Plan.Conflicts)
			}
			return fmt.Errorf("%w: %d conflicts detected", engine.ErrConflict, len(result.Plan.Conflicts))
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&force, "force", false, "Plan as if existing destination files may be overwritten")
}

// printPlan prints the operations and warnings of a plan.
func printPlan(plan *planner.MovePlan) {
	var dirs []string
	var rows [][]string
	for _, op := range plan.Operations {
		switch op.Type {
		case planner.OpMkdir:
			dirs = append(dirs, op.RelDest)
		case planner.OpMove:
			rows = append(rows, []string{op.RelSource, op.RelDest})
		}
	}

	PrintSection("Folders")
	if len(dirs) == 0 {
		PrintEmptyState("No folders to create")
	} else {
		PrintList(dirs, 1)
	}

	PrintSection(fmt.Sprintf("Moves (%d)", len(rows)))
	if len(rows) == 0 {
		PrintEmptyState("Nothing to move")
	} else {
		PrintTable([]string{"FROM", "TO"}, rows)
	}

	if len(plan.Warnings) > 0 {
		PrintSection("Skipped")
		for _, w := range plan.Warnings {
			PrintWarning(fmt.Sprintf("%s: %s", w.Path, w.Message))
		}
	}
}

// printConflicts prints plan conflicts.
func printConflicts(conflicts []planner.Conflict) {
	PrintSection("Conflicts Detected")
	PrintSubsection(fmt.Sprintf("%s, nothing was changed", PrintCount(len(conflicts), "conflict", "conflicts")))
	for _, conflict := range conflicts {
		PrintError(fmt.Sprintf("%s: %s", conflict.Path, conflict.Reason))
	}
	_, _ = fmt.Fprintln(out)
	PrintWarning("Use --force to overwrite existing files.")
}
