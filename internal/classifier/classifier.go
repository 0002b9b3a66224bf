// Package classifier decides whether a comment is spam by matching its text
// against an ordered list of rules. Classification is binary and the first
// matching rule wins; rules carry no weights or scores.
package classifier

import (
	"fmt"
	"regexp"
)

// defaultPatterns is the built-in keyword list. Patterns are compiled
// case-insensitively.
var defaultPatterns = []string{
	`\bMAX ?33\b`,
}

// Rule is a single spam predicate.
type Rule interface {
	Matches(text string) bool
}

// RegexRule matches text against a compiled regular expression.
type RegexRule struct {
	re *regexp.Regexp
}

// NewRegexRule compiles a case-insensitive regex rule.
func NewRegexRule(pattern string) (RegexRule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return RegexRule{}, fmt.Errorf("invalid spam pattern %q: %w", pattern, err)
	}
	return RegexRule{re: re}, nil
}

func (r RegexRule) Matches(text string) bool {
	return r.re.MatchString(text)
}

// Classifier holds the ordered rule list.
type Classifier struct {
	rules []Rule
}

// New builds a classifier from the built-in patterns plus any extra ones.
// Extra patterns are appended after the defaults so the built-in list keeps
// precedence.
func New(extraPatterns ...string) (*Classifier, error) {
	patterns := append(append([]string{}, defaultPatterns...), extraPatterns...)
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rule, err := NewRegexRule(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &Classifier{rules: rules}, nil
}

// IsSpam reports whether any rule matches the text.
func (c *Classifier) IsSpam(text string) bool {
	for _, rule := range c.rules {
		if rule.Matches(text) {
			return true
		}
	}
	return false
}
