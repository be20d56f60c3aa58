// Package verify checks that a reorganization left the tree in the expected
// shape.
package verify

import (
	"errors"
	"io/fs"
	"syscall"

	"github.com/godot-reorg/reorg/internal/fsops"
	"github.com/godot-reorg/reorg/internal/hash"
	"github.com/godot-reorg/reorg/internal/manifest"
)

// Mismatch is a moved file whose content changed without the rewriter
// touching it.
type Mismatch struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Result lists every postcondition violation found.
type Result struct {
	// MissingDestinations are manifest destinations absent from the tree.
	MissingDestinations []string `json:"missingDestinations"`

	// LeftoverSources are manifest sources still present in the tree.
	LeftoverSources []string `json:"leftoverSources"`

	// ChecksumMismatches are moves whose content differs from the fingerprint
	// taken before the move.
	ChecksumMismatches []Mismatch `json:"checksumMismatches"`

	// Unchecked are destinations that could not be hashed.
	Unchecked []string `json:"unchecked,omitempty"`
}

// OK reports whether every check passed.
func (r *Result) OK() bool {
	return len(r.MissingDestinations) == 0 &&
		len(r.LeftoverSources) == 0 &&
		len(r.ChecksumMismatches) == 0
}

// Verify checks each manifest move under root: the destination exists and the
// source does not. Findings are listed in manifest order.
//
// before maps sources to the hash taken before they were moved; a nil map
// skips content checks. Destinations listed in touched were legitimately
// changed by the rewriter and are not compared. Both maps are keyed by
// root-relative slash paths, touched by destination.
func Verify(fsys fsops.FS, hasher hash.Hasher, root string, m *manifest.Manifest, before map[string]string, touched map[string]bool) (*Result, error) {
	result := &Result{
		MissingDestinations: []string{},
		LeftoverSources:     []string{},
		ChecksumMismatches:  []Mismatch{},
	}

	for _, mv := range m.Moves {
		dest := fsops.Resolve(root, mv.To)
		destExists, err := exists(fsys, dest)
		if err != nil {
			return nil, err
		}
		if !destExists {
			result.MissingDestinations = append(result.MissingDestinations, mv.To)
		}

		srcExists, err := exists(fsys, fsops.Resolve(root, mv.From))
		if err != nil {
			return nil, err
		}
		if srcExists {
			result.LeftoverSources = append(result.LeftoverSources, mv.From)
		}

		sum, fingerprinted := before[mv.From]
		if !destExists || !fingerprinted || touched[mv.To] {
			continue
		}
		after, err := hasher.HashFile(dest)
		if err != nil {
			result.Unchecked = append(result.Unchecked, mv.To)
			continue
		}
		if after != sum {
			result.ChecksumMismatches = append(result.ChecksumMismatches, Mismatch{
				From:   mv.From,
				To:     mv.To,
				Before: sum,
				After:  after,
			})
		}
	}

	return result, nil
}

func exists(fsys fsops.FS, p string) (bool, error) {
	_, err := fsys.Lstat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return false, nil
	}
	return false, err
}
