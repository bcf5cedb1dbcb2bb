// Package registry holds the immutable target registry: the by-name index,
// the capability index, and the essentials set. A registry is built once
// from the parsed build file and is safe for concurrent resolution.
package registry

import (
	"fmt"
	"sort"

	"github.com/szaher/layermake/internal/target"
)

// DuplicateNameError reports two targets sharing a name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("registry: duplicate target name %q", e.Name)
}

// Registry is the immutable index over a set of targets.
type Registry struct {
	targets    []*target.Target
	byName     map[string]*target.Target
	candidates map[string][]*target.Target
	essentials map[string]bool
	declIndex  map[string]int
}

// Build constructs a registry from targets in declaration order. It fails
// with *DuplicateNameError when two targets share a name. Dangling depends
// references are not checked here; the resolver reports them per request.
func Build(targets []*target.Target) (*Registry, error) {
	r := &Registry{
		targets:    targets,
		byName:     make(map[string]*target.Target, len(targets)),
		candidates: make(map[string][]*target.Target),
		essentials: make(map[string]bool),
		declIndex:  make(map[string]int, len(targets)),
	}

	providers := make(map[string][]*target.Target)

	for i, t := range targets {
		if t.Name == "" {
			return nil, fmt.Errorf("registry: target at position %d has an empty name", i)
		}
		if _, exists := r.byName[t.Name]; exists {
			return nil, &DuplicateNameError{Name: t.Name}
		}
		r.byName[t.Name] = t
		r.declIndex[t.Name] = i

		if t.Essential {
			r.essentials[t.Name] = true
		}
		for _, cap := range t.Provides {
			providers[cap] = append(providers[cap], t)
		}
	}

	// Candidate lists: a name that is a target with no other providers maps
	// to itself (abstract or not); a concrete target with providers joins
	// them; an abstract target with providers is a pure label and yields
	// the providers only. Order is declaration order throughout.
	names := make(map[string]bool, len(r.byName)+len(providers))
	for name := range r.byName {
		names[name] = true
	}
	for cap := range providers {
		names[cap] = true
	}

	for name := range names {
		self, isTarget := r.byName[name]
		provs := providers[name]

		var list []*target.Target
		switch {
		case isTarget && len(provs) == 0:
			list = []*target.Target{self}
		case isTarget && !self.Abstract():
			list = append(list, self)
			list = append(list, provs...)
			sort.SliceStable(list, func(a, b int) bool {
				return r.declIndex[list[a].Name] < r.declIndex[list[b].Name]
			})
		default:
			list = provs
		}
		r.candidates[name] = list
	}

	return r, nil
}

// Target returns the target declared under name.
func (r *Registry) Target(name string) (*target.Target, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Targets returns all targets in declaration order. Callers must not
// modify the returned slice.
func (r *Registry) Targets() []*target.Target {
	return r.targets
}

// Candidates returns the providing targets for a capability or target
// name, in declaration order. A nil result means the name is unknown.
func (r *Registry) Candidates(name string) []*target.Target {
	return r.candidates[name]
}

// Essential reports whether name is in the essentials set.
func (r *Registry) Essential(name string) bool {
	return r.essentials[name]
}

// Essentials returns the essential capability names, sorted.
func (r *Registry) Essentials() []string {
	out := make([]string, 0, len(r.essentials))
	for name := range r.essentials {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of declared targets.
func (r *Registry) Len() int {
	return len(r.targets)
}
