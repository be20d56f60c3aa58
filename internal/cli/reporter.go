package cli

import (
	"fmt"

	"github.com/godot-reorg/reorg/internal/progress"
)

// consoleReporter prints pipeline events as they happen.
type consoleReporter struct {
	configFile string
}

var stageTitles = map[progress.Stage]string{
	progress.StagePlan:    "Planning",
	progress.StageBackup:  "Backing up project",
	progress.StageMkdir:   "Creating folders",
	progress.StageMove:    "Moving files",
	progress.StageRewrite: "Updating references",
	progress.StageVerify:  "Verifying",
}

func (r *consoleReporter) Begin(stage progress.Stage) {
	if stage == progress.StagePatch {
		PrintSection("Updating " + r.configFile)
		return
	}
	PrintSection(stageTitles[stage])
}

func (r *consoleReporter) Created(dir string) {
	PrintSuccess(dir)
}

func (r *consoleReporter) Moved(from, to string) {
	PrintSuccess(fmt.Sprintf("%s → %s", from, to))
}

func (r *consoleReporter) Rewrote(path string, rules int) {
	PrintSuccess(fmt.Sprintf("%s (%s)", path, PrintCount(rules, "change", "changes")))
}

func (r *consoleReporter) Patched(key string) {
	PrintSuccess("Updated " + key)
}

func (r *consoleReporter) Warn(w progress.Warning) {
	if w.Path == "" {
		PrintWarning(w.Message)
		return
	}
	PrintWarning(fmt.Sprintf("%s: %s", w.Path, w.Message))
}

// reporterFor picks the reporter for the current output mode. JSON output is
// printed once at the end, so nothing is streamed.
func reporterFor(configFile string) progress.Reporter {
	if jsonOutput {
		return progress.Nop{}
	}
	return &consoleReporter{configFile: configFile}
}
