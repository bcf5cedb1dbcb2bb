package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/target"
)

// CheckSemantic validates cross-target consistency: duplicate names,
// depends references that nothing declares or provides, self-provision,
// and dependency cycles reachable through any candidate choice.
func CheckSemantic(f *buildfile.File) []*Finding {
	var findings []*Finding

	declared := make(map[string]int)
	providers := make(map[string][]string)
	byName := make(map[string]*target.Target)
	for _, t := range f.Targets {
		declared[t.Name]++
		if _, ok := byName[t.Name]; !ok {
			byName[t.Name] = t
		}
		for _, cap := range t.Provides {
			providers[cap] = append(providers[cap], t.Name)
		}
	}

	var dups []string
	for name, n := range declared {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	for _, name := range dups {
		findings = append(findings, &Finding{
			File: f.Path, Target: name,
			Message: fmt.Sprintf("declared %d times", declared[name]),
			Hint:    "target names must be unique within a build file",
		})
	}

	// A depends entry is satisfiable when the name is declared or at least
	// one target provides it. Resolution would fail the whole request on
	// anything else.
	known := make(map[string]bool, len(declared)+len(providers))
	for name := range declared {
		known[name] = true
	}
	for cap := range providers {
		known[cap] = true
	}

	for _, t := range f.Targets {
		for _, dep := range t.Depends {
			if !known[dep] {
				findings = append(findings, &Finding{
					File: f.Path, Target: t.Name,
					Message: fmt.Sprintf("depends on %q, which no target declares or provides", dep),
					Hint:    suggestName(dep, known),
				})
			}
		}
		for _, cap := range t.Provides {
			if cap == t.Name {
				findings = append(findings, &Finding{
					File: f.Path, Target: t.Name,
					Message: fmt.Sprintf("provides its own name %q", cap),
					Hint:    "a target cannot stand in for itself",
				})
			}
		}
	}

	findings = append(findings, checkCycles(f, byName, providers)...)
	return findings
}

// checkCycles walks depends edges through every possible candidate choice
// and reports the first cycle found per entry point. The edge set mirrors
// candidate selection: a declared name with no providers leads to itself,
// an abstract name with providers leads to the providers only, and a
// concrete name with providers leads to both.
func checkCycles(f *buildfile.File, byName map[string]*target.Target, providers map[string][]string) []*Finding {
	candidatesOf := func(name string) []string {
		self, isTarget := byName[name]
		provs := providers[name]
		switch {
		case isTarget && len(provs) == 0:
			return []string{name}
		case isTarget && !self.Abstract():
			return append([]string{name}, provs...)
		default:
			return provs
		}
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(byName))

	var findings []*Finding
	var stack []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = grey
		stack = append(stack, name)

		t := byName[name]
		for _, dep := range t.Depends {
			for _, next := range candidatesOf(dep) {
				if _, ok := byName[next]; !ok {
					continue
				}
				switch color[next] {
				case grey:
					findings = append(findings, cycleFinding(f.Path, stack, next))
					return true
				case white:
					if visit(next) {
						return true
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if color[name] == white {
			stack = stack[:0]
			if visit(name) {
				for _, n := range stack {
					color[n] = black
				}
			}
		}
	}

	return findings
}

func cycleFinding(file string, stack []string, reentered string) *Finding {
	start := 0
	for i, n := range stack {
		if n == reentered {
			start = i
			break
		}
	}
	path := append(append([]string{}, stack[start:]...), reentered)
	return &Finding{
		File: file, Target: reentered,
		Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
		Hint:    "break the cycle by removing one of the depends entries",
	}
}

// suggestName returns a "did you mean" hint when a close match exists,
// otherwise lists what is available.
func suggestName(name string, available map[string]bool) string {
	if len(available) == 0 {
		return ""
	}
	names := make([]string, 0, len(available))
	for n := range available {
		names = append(names, n)
	}
	sort.Strings(names)

	best := ""
	bestDist := len(name)/2 + 1
	for _, n := range names {
		if d := levenshtein(name, n); d < bestDist {
			bestDist = d
			best = n
		}
	}
	if best != "" {
		return fmt.Sprintf("did you mean %q?", best)
	}
	return "available: " + strings.Join(names, ", ")
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
