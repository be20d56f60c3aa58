// Package manifest holds the move table that drives a reorganization.
//
// A Manifest is an explicit value: the built-in Default reproduces the
// layout the tool was written for, and Load reads the same shape from YAML so
// the pipeline can run against any tree. Nothing here touches the filesystem
// except Load.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/godot-reorg/reorg/internal/fsops"
)

// SchemaVersion is the manifest format version written by Encode.
const SchemaVersion = 1

// Defaults applied to fields a manifest file leaves empty.
const (
	DefaultScheme     = "res://"
	DefaultConfigFile = "project.godot"
	DefaultCacheDir   = ".godot"
)

// DefaultInclude selects the scene, script and resource files that may hold references.
var DefaultInclude = []string{"**/*.tscn", "**/*.gd", "**/*.tres"}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid manifest")

// Move relocates one file. Both paths are project-root-relative with forward slashes.
type Move struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Autoload names an entry in the config file's [autoload] section whose
// target is one of the moved files.
type Autoload struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// Manifest is the full description of a reorganization.
type Manifest struct {
	SchemaVersion int `yaml:"schemaVersion" json:"schemaVersion"`

	// Scheme prefixes every engine path reference, e.g. "res://".
	Scheme string `yaml:"scheme" json:"scheme"`

	// ConfigFile is the project configuration file patched for autoloads.
	ConfigFile string `yaml:"configFile" json:"configFile"`

	// CacheDir is a directory name that is never traversed, at any depth.
	CacheDir string `yaml:"cacheDir" json:"cacheDir"`

	// Include holds doublestar patterns for files whose references are rewritten.
	Include []string `yaml:"include" json:"include"`

	// Moves are applied in order.
	Moves []Move `yaml:"moves" json:"moves"`

	Autoloads []Autoload `yaml:"autoloads,omitempty" json:"autoloads,omitempty"`
}

// Load reads a YAML manifest and fills unset fields with defaults.
func Load(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: failed to decode: %v", ErrInvalid, err)
	}
	m.applyDefaults()
	return &m, nil
}

// Encode renders the manifest as YAML.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *Manifest) applyDefaults() {
	if m.SchemaVersion == 0 {
		m.SchemaVersion = SchemaVersion
	}
	if m.Scheme == "" {
		m.Scheme = DefaultScheme
	}
	if m.ConfigFile == "" {
		m.ConfigFile = DefaultConfigFile
	}
	if m.CacheDir == "" {
		m.CacheDir = DefaultCacheDir
	}
	if len(m.Include) == 0 {
		m.Include = append([]string(nil), DefaultInclude...)
	}
}

// Destination returns where a source is moved to.
func (m *Manifest) Destination(from string) (string, bool) {
	for _, mv := range m.Moves {
		if mv.From == from {
			return mv.To, true
		}
	}
	return "", false
}

// Directories returns the parent directory of every destination, deduplicated
// and sorted. Root-level destinations contribute nothing.
func (m *Manifest) Directories() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, mv := range m.Moves {
		dir := path.Dir(mv.To)
		if dir == "." || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Validate checks the invariants the rest of the pipeline relies on. All
// violations are reported together.
func (m *Manifest) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if m.SchemaVersion != SchemaVersion {
		fail("unsupported schemaVersion %d", m.SchemaVersion)
	}
	if !strings.HasSuffix(m.Scheme, "://") {
		fail("scheme %q must end with ://", m.Scheme)
	}
	if err := fsops.ValidateRelPath(m.ConfigFile); err != nil {
		fail("configFile: %v", err)
	}
	if m.CacheDir == "" || strings.ContainsAny(m.CacheDir, `/\`) {
		fail("cacheDir %q must be a single directory name", m.CacheDir)
	}
	if len(m.Include) == 0 {
		fail("include: at least one pattern is required")
	}
	for _, p := range m.Include {
		if !doublestar.ValidatePattern(p) {
			fail("include: bad pattern %q", p)
		}
	}
	if len(m.Moves) == 0 {
		fail("moves: at least one move is required")
	}

	sources := make(map[string]int)
	dests := make(map[string]int)
	for i, mv := range m.Moves {
		if err := fsops.ValidateRelPath(mv.From); err != nil {
			fail("moves[%d].from: %v", i, err)
		}
		if err := fsops.ValidateRelPath(mv.To); err != nil {
			fail("moves[%d].to: %v", i, err)
		}
		if mv.From == mv.To {
			fail("moves[%d]: %q maps to itself", i, mv.From)
		}
		if j, dup := sources[mv.From]; dup {
			fail("moves[%d]: source %q already listed at moves[%d]", i, mv.From, j)
		} else {
			sources[mv.From] = i
		}
		if j, dup := dests[mv.To]; dup {
			fail("moves[%d]: destination %q already used by moves[%d]", i, mv.To, j)
		} else {
			dests[mv.To] = i
		}
	}

	for i, mv := range m.Moves {
		if j, chained := sources[mv.To]; chained {
			fail("moves[%d]: destination %q is the source of moves[%d]", i, mv.To, j)
		}
	}

	all := make([]string, 0, 2*len(m.Moves))
	for _, mv := range m.Moves {
		all = append(all, mv.From, mv.To)
	}
	for _, p := range all {
		for _, q := range all {
			if strings.HasPrefix(q, p+"/") {
				fail("path %q is a directory prefix of %q", p, q)
			}
		}
	}

	names := make(map[string]bool)
	for i, a := range m.Autoloads {
		if a.Name == "" || strings.ContainsAny(a.Name, "=\" \t\n") {
			fail("autoloads[%d]: bad name %q", i, a.Name)
		}
		if names[a.Name] {
			fail("autoloads[%d]: duplicate name %q", i, a.Name)
		}
		names[a.Name] = true
		if _, ok := sources[a.Path]; !ok {
			fail("autoloads[%d]: %q is not a moved file", i, a.Path)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
