// Package rewrite updates textual path references after files have moved.
//
// There is no scene parser here. A ReplacementSet holds literal old/new
// pairs derived from the manifest, and every matching substring in a project
// text file is replaced. That is only safe because ReplacementSet.Validate
// proves no rule can match inside another rule's input or output.
package rewrite

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/godot-reorg/reorg/internal/manifest"
)

// ErrOverlap is wrapped when two rules could interfere with each other.
var ErrOverlap = errors.New("overlapping replacement rules")

// Form identifies which surface form of a path a rule matches.
type Form string

const (
	// FormURI matches res://old.
	FormURI Form = "uri"
	// FormAttr matches path="res://old".
	FormAttr Form = "attr"
	// FormQuoted matches "old".
	FormQuoted Form = "quoted"
)

// Rule is a single literal substitution.
type Rule struct {
	Old  string
	New  string
	Form Form

	// Move is the index of the manifest entry the rule came from.
	Move int
}

// ReplacementSet is an ordered list of rules. Order is manifest order, and
// within one move: URI, attribute, quoted.
type ReplacementSet struct {
	Rules []Rule
}

// NewReplacementSet derives three rules per move.
func NewReplacementSet(m *manifest.Manifest) *ReplacementSet {
	set := &ReplacementSet{Rules: make([]Rule, 0, 3*len(m.Moves))}
	for i, mv := range m.Moves {
		oldURI := m.Scheme + mv.From
		newURI := m.Scheme + mv.To
		set.Rules = append(set.Rules,
			Rule{Old: oldURI, New: newURI, Form: FormURI, Move: i},
			Rule{Old: `path="` + oldURI + `"`, New: `path="` + newURI + `"`, Form: FormAttr, Move: i},
			Rule{Old: `"` + mv.From + `"`, New: `"` + mv.To + `"`, Form: FormQuoted, Move: i},
		)
	}
	return set
}

// Len returns the number of rules.
func (s *ReplacementSet) Len() int {
	return len(s.Rules)
}

// Apply runs every rule over text and returns the result together with the
// number of rules that matched at least once.
func (s *ReplacementSet) Apply(text string) (string, int) {
	applied := 0
	for _, r := range s.Rules {
		if !strings.Contains(text, r.Old) {
			continue
		}
		text = strings.ReplaceAll(text, r.Old, r.New)
		applied++
	}
	return text, applied
}

// Validate rejects sets where rule order could change the outcome:
//   - an old literal from one move occurring inside another move's old literal
//   - any old literal occurring inside any new literal, which would also make
//     a second pass rewrite already-migrated text
func (s *ReplacementSet) Validate() error {
	var errs []error
	for _, a := range s.Rules {
		for _, b := range s.Rules {
			if a.Move != b.Move && strings.Contains(b.Old, a.Old) {
				errs = append(errs, fmt.Errorf("%q matches inside %q", a.Old, b.Old))
			}
			if strings.Contains(b.New, a.Old) {
				errs = append(errs, fmt.Errorf("%q matches inside replacement %q", a.Old, b.New))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrOverlap, errors.Join(errs...))
}

// Fragment is an exact old/new text fragment for the config patcher.
type Fragment struct {
	// Key names the setting, used for reporting.
	Key string
	Old string
	New string
}

// ConfigFragments derives the config file patches: one per autoload, plus
// one main-scene entry per moved scene.
func ConfigFragments(m *manifest.Manifest) []Fragment {
	var frags []Fragment
	for _, a := range m.Autoloads {
		to, ok := m.Destination(a.Path)
		if !ok {
			continue
		}
		frags = append(frags, Fragment{
			Key: a.Name,
			Old: a.Name + `="*` + m.Scheme + a.Path + `"`,
			New: a.Name + `="*` + m.Scheme + to + `"`,
		})
	}
	for _, mv := range m.Moves {
		if path.Ext(mv.From) != ".tscn" {
			continue
		}
		frags = append(frags, Fragment{
			Key: "run/main_scene",
			Old: `run/main_scene="` + m.Scheme + mv.From + `"`,
			New: `run/main_scene="` + m.Scheme + mv.To + `"`,
		})
	}
	return frags
}
