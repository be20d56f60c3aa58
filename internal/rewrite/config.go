package rewrite

import (
	"fmt"
	"strings"

	"github.com/godot-reorg/reorg/internal/fsops"
)

// PatchResult describes a PatchConfig call.
type PatchResult struct {
	// Applied lists the keys of fragments that were found and replaced.
	Applied []string `json:"applied"`

	// Written reports whether the file was written back.
	Written bool `json:"written"`
}

// PatchConfig replaces exact fragments in a single configuration file.
// Unlike RewriteFile it does not count rules; each fragment either matches
// verbatim or is left alone. The file is written only if something changed,
// unless force is set, in which case it is always rewritten.
func PatchConfig(fsys fsops.FS, path string, fragments []Fragment, force bool) (*PatchResult, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	content := string(data)
	result := &PatchResult{Applied: []string{}}
	for _, f := range fragments {
		if !strings.Contains(content, f.Old) {
			continue
		}
		content = strings.ReplaceAll(content, f.Old, f.New)
		result.Applied = append(result.Applied, f.Key)
	}

	if content == string(data) && !force {
		return result, nil
	}
	if err := fsys.AtomicWrite(path, []byte(content), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	result.Written = true
	return result, nil
}
