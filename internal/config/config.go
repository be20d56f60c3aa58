// Package config resolves run settings for godot-reorg.
//
// Settings come from the environment, optionally seeded from a .env file in
// the working directory, and are then overridden by command-line flags. The
// project root defaults to the nearest directory holding project.godot.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Options holds settings that may come from the environment.
type Options struct {
	// Root is the project root; empty means discover it.
	Root string `env:"REORG_ROOT"`

	// Manifest is a YAML manifest path; empty means the built-in table.
	Manifest string `env:"REORG_MANIFEST"`

	// BackupDir overrides the default backup location.
	BackupDir string `env:"REORG_BACKUP_DIR"`

	Debug     bool `env:"REORG_DEBUG" envDefault:"false"`
	AssumeYes bool `env:"REORG_ASSUME_YES" envDefault:"false"`
}

// Load parses Options from the process environment. Variables found in the
// given dotenv files fill in anything the environment leaves unset; missing
// files are ignored.
func Load(dotenvFiles ...string) (*Options, error) {
	vars := make(map[string]string)
	for _, file := range dotenvFiles {
		fileVars, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", file, err)
		}
		for k, v := range fileVars {
			if _, seen := vars[k]; !seen {
				vars[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	opts := &Options{}
	if err := env.ParseWithOptions(opts, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return opts, nil
}
