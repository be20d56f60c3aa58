package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/godot-reorg/reorg/internal/clock"
	"github.com/godot-reorg/reorg/internal/config"
	"github.com/godot-reorg/reorg/internal/engine"
	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
	"github.com/godot-reorg/reorg/internal/progress"
)

// settings is the merged view of environment and flags for one command.
type settings struct {
	Root      string
	Manifest  *manifest.Manifest
	Source    string
	BackupDir string
	AssumeYes bool
	Debug     bool
}

// loadSettings reads the environment (and .env), lets flags override it, and
// resolves the manifest. The project root is only resolved when withRoot is set.
func loadSettings(withRoot bool) (*settings, error) {
	opts, err := config.Load(config.DotEnvFile)
	if err != nil {
		return nil, err
	}

	s := &settings{
		BackupDir: firstNonEmpty(backupDir, opts.BackupDir),
		AssumeYes: assumeYes || opts.AssumeYes,
		Debug:     verbose || opts.Debug,
	}

	if withRoot {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		s.Root, err = config.ResolveRoot(firstNonEmpty(rootDir, opts.Root), cwd)
		if err != nil {
			return nil, err
		}
	}

	s.Source = firstNonEmpty(manifestFile, opts.Manifest)
	if s.Source == "" {
		s.Manifest = manifest.Default()
		return s, nil
	}
	s.Manifest, err = manifest.Load(s.Source)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// newLogger creates the diagnostic logger. It stays quiet unless debugging.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(s *settings, reporter progress.Reporter) *engine.Engine {
	return engine.New(
		fsops.NewRealFS(),
		hash.NewSHA256Hasher(),
		&clock.RealClock{},
		newLogger(s.Debug),
		reporter,
	)
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
