package util

import (
	"regexp"
	"strings"
)

var (
	// ```json\n...\n``` , ```\n...\n```
	fencedBlockRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_+.-]*[ \\t]*\\r?\\n(.*?)\\s*```$")
	// ```{...}``` on a single line
	inlineFenceRe = regexp.MustCompile("(?s)^```(.*?)```$")
)

// StripCodeFences removes one surrounding markdown code fence (with an optional
// language tag) from s. Text without a complete fence is returned trimmed but
// otherwise untouched.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	if m := fencedBlockRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := inlineFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
