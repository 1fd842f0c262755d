package correct

import (
	"log/slog"
	"regexp"
	"strings"
)

// Rule is one pattern/replacement pair. Patterns are compiled
// case-insensitively; replacements may reference captured groups ($1, $2...).
type Rule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

type compiledRule struct {
	re          *regexp.Regexp
	replacement string
}

// Corrector applies an ordered list of substitutions to transcribed text.
type Corrector struct {
	rules []compiledRule
}

// New compiles the rule list. A malformed pattern is skipped with a warning;
// it must never be able to take down a later transcription.
func New(rules []Rule, logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Corrector{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			logger.Warn("skipping malformed correction rule", "pattern", r.Pattern, "error", err)
			continue
		}
		c.rules = append(c.rules, compiledRule{re: re, replacement: r.Replacement})
	}
	return c
}

// Apply folds the rules over text in order. Each rule rewrites the output of
// the previous one, not the original input. The final result is trimmed.
func (c *Corrector) Apply(text string) string {
	for _, r := range c.rules {
		text = r.re.ReplaceAllString(text, r.replacement)
	}
	return strings.TrimSpace(text)
}

// Len reports how many rules survived compilation.
func (c *Corrector) Len() int {
	return len(c.rules)
}
