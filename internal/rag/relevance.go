package rag

import "strings"

const (
	relevanceWords  = 10
	relevanceMinLen = 5
)

// Relevant reports whether retrieved context shares vocabulary with the user
// text or the domain description. Only the first ten words of the text longer
// than four characters are considered.
func Relevant(text, domainDescription, context string) bool {
	if context == "" {
		return false
	}
	ctx := strings.ToLower(context)

	checked := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(w)) < relevanceMinLen {
			continue
		}
		if strings.Contains(ctx, w) {
			return true
		}
		checked++
		if checked == relevanceWords {
			break
		}
	}
	for _, w := range strings.Fields(strings.ToLower(domainDescription)) {
		if strings.Contains(ctx, w) {
			return true
		}
	}
	return false
}
