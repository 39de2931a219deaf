package sandbox

import (
	"strings"

	"github.com/agentcore/reactor/agenterr"
)

// forbiddenIdentifiers names primitives that are always rejected regardless
// of authorized_imports: filesystem, network, and process access have no
// legitimate use inside a code action and are never "authorized imports",
// only ordinary tool calls are.
var forbiddenIdentifiers = []string{
	"open(", "os.", "exec(", "eval(", "__import__",
	"subprocess", "socket", "urllib", "requests.", "syscall",
}

// Validate rejects code containing forbidden constructs. It is total
// (single pass over the source, no recursion or backtracking), deterministic,
// and never executes any part of code. authorizedImports names the only
// import/require targets allowed to appear verbatim in the source; any other
// import/require statement is rejected.
func Validate(code string, authorizedImports []string) error {
	for _, forbidden := range forbiddenIdentifiers {
		if strings.Contains(code, forbidden) {
			return agenterr.Newf(agenterr.KindInterpreter, "forbidden construct %q in code action", strings.TrimSuffix(forbidden, "("))
		}
	}
	allowed := make(map[string]bool, len(authorizedImports))
	for _, imp := range authorizedImports {
		allowed[imp] = true
	}
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		var target string
		switch {
		case strings.HasPrefix(trimmed, "import "):
			target = strings.TrimSpace(strings.TrimPrefix(trimmed, "import "))
		case strings.HasPrefix(trimmed, "require("):
			target = strings.Trim(strings.TrimSuffix(strings.TrimPrefix(trimmed, "require("), ")"), `"' `)
		default:
			continue
		}
		target = strings.Trim(target, `"'`)
		if !allowed[target] {
			return agenterr.Newf(agenterr.KindInterpreter, "import %q is not in authorized_imports", target)
		}
	}
	return nil
}
