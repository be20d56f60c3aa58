package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/godot-reorg/reorg/internal/engine"
	"github.com/godot-reorg/reorg/internal/fsops"
)

var (
	// Global flags
	jsonOutput   bool
	verbose      bool
	rootDir      string
	manifestFile string

	// Run flags
	dryRun      bool
	force       bool
	makeBackup  bool
	backupDir   string
	touchConfig bool
	assumeYes   bool

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// errAborted is returned when the confirmation prompt is not answered.
var errAborted = errors.New("aborted: no confirmation received (use --yes to skip the prompt)")

// rootCmd is the root command for godot-reorg.
var rootCmd = &cobra.Command{
	Use:     "godot-reorg",
	Version: "dev",
	Short:   "Reorganize a Godot project into a folder layout",
	Long: `godot-reorg moves the scripts and scenes of a Godot project into a new folder
layout and rewrites every res:// reference so the project keeps loading.

Run it from anywhere inside the project with Godot closed. Use 'plan' first to
see what would happen, and --backup to keep a copy of the project.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		out = cmd.OutOrStdout()
		errOut = cmd.ErrOrStderr()
	},
	RunE: runReorganize,
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func runReorganize(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(true)
	if err != nil {
		return err
	}

	if !jsonOutput {
		PrintBanner("GODOT PROJECT REORGANIZATION")
		PrintLabelValue("Project", s.Root)
		PrintLabelValue("Files to move", fmt.Sprintf("%d", len(s.Manifest.Moves)))
		if s.Source != "" {
			PrintLabelValue("Manifest", s.Source)
		}
	}

	if !dryRun && !s.AssumeYes {
		if err := confirm(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	// Ctrl-C stops the run at the next file boundary
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng := newEngine(s, reporterFor(s.Manifest.ConfigFile))
	result, err := eng.Reorganize(ctx, &engine.ReorganizeRequest{
		Root:        s.Root,
		Manifest:    s.Manifest,
		DryRun:      dryRun,
		Force:       force,
		Backup:      makeBackup,
		BackupDir:   s.BackupDir,
		TouchConfig: touchConfig,
	})
	if err != nil {
		if result != nil && result.Plan != nil && result.Plan.HasConflicts() && !jsonOutput {
			printConflicts(result.Plan.Conflicts)
		}
		if result != nil && result.Mutated {
			return withRecovery(err, s.Root, result.BackupDir)
		}
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if dryRun {
		printPlan(result.Plan)
		_, _ = fmt.Fprintln(out)
		PrintInfo("Dry run: no changes were made.")
		return nil
	}

	printSummary(fsops.NewRealFS(), s, result)
	_, _ = fmt.Fprintln(out)
	PrintSuccess("REORGANIZATION COMPLETE!")
	PrintInfo("You can now open Godot and test your project.")
	return nil
}

// confirm waits for ENTER. The prompt goes to stderr so --json output stays
// clean.
func confirm(in io.Reader) error {
	_, _ = fmt.Fprintln(errOut)
	_, _ = warningColor.Fprintln(errOut, "⚠ IMPORTANT: Close Godot before continuing!")
	_, _ = fmt.Fprint(errOut, "Press ENTER when Godot is closed...")

	line, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(errOut)
	if err == io.EOF && strings.TrimSpace(line) == "" {
		return errAborted
	}
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	return nil
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	// Build complete help output
	var help strings.Builder

	// Add long description if present
	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	}

	// Add usage
	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	// Add grouped commands
	for _, group := range cmd.Groups() {
		// Color the group title
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	// Add ungrouped commands (Additional Commands section)
	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Additional Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	// Add flags
	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	// Add usage footer
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

func init() {
	// Set custom help function to color group titles
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every decision to stderr")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root (default: nearest directory with project.godot)")
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "", "YAML move manifest (default: built-in layout)")

	// Run flags
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without changing anything")
	rootCmd.Flags().BoolVar(&force, "force", false, "Overwrite files already at a destination")
	rootCmd.Flags().BoolVar(&makeBackup, "backup", false, "Copy the project next to itself before changing it")
	rootCmd.Flags().StringVar(&backupDir, "backup-dir", "", "Backup location outside the project (implies --backup)")
	rootCmd.Flags().BoolVar(&touchConfig, "touch-config", false, "Rewrite project.godot even when nothing in it changed")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not wait for confirmation")

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "reorganize",
		Title: "Reorganization:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	// CLI & Tooling commands
	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the godot-reorg CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// Add help command to CLI & Tooling group
	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Root().Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	// Add completion command to CLI & Tooling group
	completionCmd := &cobra.Command{
		Use:     "completion",
		Short:   "Generate the autocompletion script for the specified shell",
		GroupID: "cli-tooling",
		Long: `Generate the autocompletion script for godot-reorg for the specified shell.
See each sub-command's help for details on how to use the generated script.`,
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "bash",
		Short:                 "Generate the autocompletion script for bash",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate the autocompletion script for zsh",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "fish",
		Short:                 "Generate the autocompletion script for fish",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "powershell",
		Short:                 "Generate the autocompletion script for powershell",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		},
	})
	rootCmd.AddCommand(completionCmd)

	// Reorganization commands
	planCmd.GroupID = "reorganize"
	verifyCmd.GroupID = "reorganize"
	manifestCmd.GroupID = "reorganize"
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(manifestCmd)
}

// jsonError is the --json form of a fatal error.
type jsonError struct {
	Error    string   `json:"error"`
	Recovery []string `json:"recovery,omitempty"`
}

// reportError prints a fatal error on stderr and, with --json, also as a
// JSON object on stdout.
func reportError(cmd *cobra.Command, err error) {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), formatError(err))
	// A failed verification has already printed its result as JSON
	if !jsonOutput || errors.Is(err, engine.ErrVerification) {
		return
	}

	payload := jsonError{Error: err.Error()}
	var rec *recoveryError
	if errors.As(err, &rec) {
		payload = jsonError{Error: rec.err.Error(), Recovery: rec.steps}
	}
	data, jsonErr := formatJSON(payload)
	if jsonErr != nil {
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), data)
}

// Execute executes the root command and reports any error it returns.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd, err)
	}
	return err
}
