package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/godot-reorg/reorg/internal/backup"
	"github.com/godot-reorg/reorg/internal/engine"
	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/manifest"
)

// folderTree renders the top-level destination folders of m as they now
// exist under root, with the number of files moved into each subfolder.
// Subfolders that received nothing are shown as pre-existing.
func folderTree(fsys fsops.FS, root string, m *manifest.Manifest, scheme string) []string {
	counts := make(map[string]int)
	var tops []string
	seen := make(map[string]bool)
	for _, mv := range m.Moves {
		parts := strings.SplitN(mv.To, "/", 3)
		if len(parts) < 2 {
			continue
		}
		if !seen[parts[0]] {
			seen[parts[0]] = true
			tops = append(tops, parts[0])
		}
		if ok, err := fsys.Exists(fsops.Resolve(root, mv.To)); err != nil || !ok {
			continue
		}
		if len(parts) == 2 {
			counts[parts[0]]++
		} else {
			counts[parts[0]+"/"+parts[1]]++
		}
	}

	lines := []string{scheme}
	for i, top := range tops {
		last := i == len(tops)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		lines = append(lines, branch+treeEntry(top, counts[top], false))

		subs := subdirs(fsys, filepath.Join(root, top))
		for j, sub := range subs {
			subBranch := "├── "
			if j == len(subs)-1 {
				subBranch = "└── "
			}
			lines = append(lines, indent+subBranch+treeEntry(sub, counts[top+"/"+sub], true))
		}
		if !last {
			lines = append(lines, "│")
		}
	}
	return lines
}

func treeEntry(name string, files int, showExisting bool) string {
	switch {
	case files > 0:
		return fmt.Sprintf("%-16s(%s)", name+"/", PrintCount(files, "file", "files"))
	case showExisting:
		return fmt.Sprintf("%-16s(already existed)", name+"/")
	default:
		return name + "/"
	}
}

func subdirs(fsys fsops.FS, dir string) []string {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

var nextSteps = []string{
	"Open Godot",
	"Click 'Reimport' if Godot asks",
	"Press F5 to test your game",
	"If everything works, delete the backup folder",
	"If something broke, restore from the backup",
}

// printSummary prints the end-of-run report.
func printSummary(fsys fsops.FS, s *settings, result *engine.ReorganizeResult) {
	PrintBanner("REORGANIZATION SUMMARY")

	PrintSection("New Folder Structure")
	for _, line := range folderTree(fsys, result.Root, s.Manifest, s.Manifest.Scheme) {
		PrintInfo("  " + line)
	}

	PrintSection("Changes")
	PrintLabelValue("Folders created", fmt.Sprintf("%d", len(result.Created)))
	PrintLabelValue("Files moved", fmt.Sprintf("%d of %d", len(result.Moved), len(s.Manifest.Moves)))
	if result.Rewrite != nil {
		PrintLabelValue("References updated", fmt.Sprintf("%s in %s (%d scanned)",
			PrintCount(result.Rewrite.TotalChanges, "change", "changes"),
			PrintCount(result.Rewrite.FilesTouched, "file", "files"),
			result.Rewrite.FilesScanned))
	}
	if result.Config != nil {
		PrintLabelValue(s.Manifest.ConfigFile, fmt.Sprintf("%s updated, written=%t",
			PrintCount(len(result.Config.Applied), "entry", "entries"), result.Config.Written))
	}
	if len(result.Warnings) > 0 {
		PrintLabelValue("Warnings", fmt.Sprintf("%d", len(result.Warnings)))
	}
	PrintLabelValue("Duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond).String())

	if result.Verify != nil {
		_, _ = fmt.Fprintln(out)
		if result.Verify.OK() {
			PrintSuccess("All files moved successfully!")
		} else {
			PrintWarning(fmt.Sprintf("Verification found problems: %d missing, %d left in place, %d changed",
				len(result.Verify.MissingDestinations), len(result.Verify.LeftoverSources), len(result.Verify.ChecksumMismatches)))
		}
	}

	PrintSection("Next Steps")
	PrintNumberedList(nextSteps, 0)

	if result.BackupDir != "" {
		PrintSection("Backup Location")
		PrintSubsection(result.BackupDir)
	}
}

// recoveryError carries the manual restore steps along with a fatal error,
// so they are printed right after it.
type recoveryError struct {
	err   error
	steps []string
}

func withRecovery(err error, root, backupDir string) error {
	return &recoveryError{err: err, steps: backup.RestoreInstructions(root, backupDir)}
}

func (e *recoveryError) Error() string {
	var b strings.Builder
	b.WriteString(e.err.Error())
	b.WriteString("\n\nTo restore the project:")
	for i, step := range e.steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	return b.String()
}

func (e *recoveryError) Unwrap() error {
	return e.err
}
