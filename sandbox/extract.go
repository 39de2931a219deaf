package sandbox

import (
	"regexp"

	"github.com/agentcore/reactor/agenterr"
)

// delimiter patterns are tried in the order the spec requires: a fenced
// block with a language tag, a plain fenced block, then an HTML-ish <code>
// tag pair.
var delimiterPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]+\\s*\\n(.*?)```"),
	regexp.MustCompile("(?s)```\\s*\\n(.*?)```"),
	regexp.MustCompile("(?s)<code>(.*?)</code>"),
}

// ExtractCodeBlock picks the first matching fenced code block out of a raw
// model response, trying delimiter styles in order. It returns an agenterr
// error of KindParsing when none match.
func ExtractCodeBlock(raw string) (string, error) {
	for _, pat := range delimiterPatterns {
		if m := pat.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	return "", agenterr.New(agenterr.KindParsing, "expected a fenced code block in model output")
}
