package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches `{{name}}` markers, the wire format spec
// §3 documents for Prompt Template content. Only bare identifiers are
// supported; anything containing pipes, dots, or control keywords is
// the kind of malformed template ValidateTemplate rejects.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]*)\s*\}\}`)

// ValidateTemplate rejects unbalanced braces and placeholders outside
// the fixed vocabulary; it does not check whether referenced context
// will actually be available at render time.
func ValidateTemplate(body string) error {
	if strings.Count(body, "{{") != strings.Count(body, "}}") {
		return fmt.Errorf("prompt: unbalanced template braces")
	}

	matches := placeholderPattern.FindAllStringSubmatch(body, -1)
	remaining := body
	for _, m := range matches {
		remaining = strings.Replace(remaining, m[0], "", 1)
		if m[1] == "" {
			return fmt.Errorf("prompt: empty placeholder marker")
		}
		if !knownPlaceholder(m[1]) {
			return fmt.Errorf("prompt: unknown placeholder %q", m[1])
		}
	}
	if strings.Contains(remaining, "{{") || strings.Contains(remaining, "}}") {
		return fmt.Errorf("prompt: malformed placeholder marker")
	}
	return nil
}

// Render substitutes every `{{name}}` marker in body with ctx[name].
// A missing key renders as "" unless strict is set, in which case
// Render fails outright — matching §4.5's "missing placeholders are
// rendered as empty unless the template is declared strict".
func Render(body string, ctx map[string]string, strict bool) (string, error) {
	var renderErr error
	out := placeholderPattern.ReplaceAllStringFunc(body, func(marker string) string {
		m := placeholderPattern.FindStringSubmatch(marker)
		name := m[1]
		val, ok := ctx[name]
		if !ok {
			if strict {
				renderErr = fmt.Errorf("prompt: missing value for placeholder %q", name)
			}
			return ""
		}
		return val
	})
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}
