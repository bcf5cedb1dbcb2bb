// Package vars implements %(NAME)s template substitution for
// machine-specific paths in build files and configs.
package vars

import (
	"fmt"
	"strings"
)

// Map holds the machine-specific substitution values.
type Map map[string]string

// Expand replaces every %(NAME)s placeholder in template with its value
// from vars. %% produces a literal percent sign. An unknown variable or a
// malformed placeholder is an error naming the template.
func Expand(template string, vars Map) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(template) {
			return "", fmt.Errorf("vars: dangling %% at end of template %q", template)
		}
		switch template[i+1] {
		case '%':
			b.WriteByte('%')
			i += 2
		case '(':
			end := strings.IndexByte(template[i+2:], ')')
			if end < 0 {
				return "", fmt.Errorf("vars: unterminated placeholder in template %q", template)
			}
			name := template[i+2 : i+2+end]
			rest := i + 2 + end + 1
			if rest >= len(template) || template[rest] != 's' {
				return "", fmt.Errorf("vars: placeholder %%(%s) in template %q must end with 's'", name, template)
			}
			value, ok := vars[name]
			if !ok {
				return "", fmt.Errorf("vars: undefined variable %q in template %q", name, template)
			}
			b.WriteString(value)
			i = rest + 1
		default:
			return "", fmt.Errorf("vars: unsupported conversion %%%c in template %q", template[i+1], template)
		}
	}

	return b.String(), nil
}

// Refs returns the variable names referenced by template, in order of first
// appearance. Malformed placeholders are ignored here; Expand reports them.
func Refs(template string) []string {
	var names []string
	seen := make(map[string]bool)

	for i := 0; i < len(template)-1; {
		if template[i] != '%' {
			i++
			continue
		}
		if template[i+1] == '%' {
			i += 2
			continue
		}
		if template[i+1] != '(' {
			i += 2
			continue
		}
		end := strings.IndexByte(template[i+2:], ')')
		if end < 0 {
			break
		}
		name := template[i+2 : i+2+end]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i += 2 + end + 1
	}

	return names
}
