package core

import "regexp"

// blockedCategory is one deny-list entry. The table is data, not branching,
// so each pattern can be tested on its own.
type blockedCategory struct {
	name    string
	pattern *regexp.Regexp
}

var blockedCategories = []blockedCategory{
	{"credentials", regexp.MustCompile(`(?i)\b(password|credit card|ssn|social security|bank account|pin|cvv)\b`)},
	{"personal-contact", regexp.MustCompile(`(?i)\b(address|phone number|email|personal contact)\b`)},
	{"security", regexp.MustCompile(`(?i)\b(hack|exploit|vulnerability|attack|malware|virus)\b`)},
	{"illegal", regexp.MustCompile(`(?i)\b(illegal|crime|fraud|scam)\b`)},
	{"off-topic", regexp.MustCompile(`(?i)\b(weather|news|politics|religion|medical advice)\b`)},
	{"how-to", regexp.MustCompile(`(?i)\b(how to (make|create|build))\b`)},
	{"food", regexp.MustCompile(`(?i)\b(recipe|cooking|food)\b`)},
	{"entertainment", regexp.MustCompile(`(?i)\b(movie|music|game|sport)\b`)},
	{"coding-help", regexp.MustCompile(`(?i)\b(write code|debug|fix|help me with|solve)\b`)},
	{"compute", regexp.MustCompile(`(?i)\b(calculate|compute|translate)\b`)},
}

// Guard pre-filters questions against a deny-list of disallowed topics. It is
// a literal pattern table, not a classifier; false positives are accepted.
type Guard struct {
	categories []blockedCategory
}

func NewGuard() *Guard {
	return &Guard{categories: blockedCategories}
}

// Blocked reports whether any deny-list pattern matches the question.
func (g *Guard) Blocked(question string) bool {
	for _, c := range g.categories {
		if c.pattern.MatchString(question) {
			return true
		}
	}
	return false
}
