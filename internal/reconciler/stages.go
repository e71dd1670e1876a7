package reconciler

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	commentaryKeyRe = regexp.MustCompile(`"commentary"\s*:\s*"`)
	nextFieldRe     = regexp.MustCompile(`",\s*"(state|risks|healthImpact)"`)
	fieldBoundaryRe = regexp.MustCompile(`"\s*,\s*"(state|risks|healthImpact)"`)
	closingQuoteRe  = regexp.MustCompile(`"\s*[,}]`)
)

// strictParse decodes the span between the first '{' and the last '}'.
func strictParse(text string) (candidate, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var c candidate
	if err := json.Unmarshal([]byte(text[start:end+1]), &c); err != nil || c == nil {
		return nil, false
	}
	return c, true
}

// repairTruncation handles a commentary string that was cut before its closing quote.
func repairTruncation(text string) (candidate, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return nil, false
	}
	body := text[start:]
	loc := commentaryKeyRe.FindStringIndex(body)
	if loc == nil {
		return nil, false
	}
	value := body[loc[1]:]
	if closingQuote(value) >= 0 || nextFieldRe.MatchString(body) {
		return nil, false
	}
	return minimal(decodePartial(value)), true
}

// salvageCommentary extracts the commentary value from text that is otherwise unparseable.
func salvageCommentary(text string) (candidate, bool) {
	loc := commentaryKeyRe.FindStringIndex(text)
	if loc == nil {
		return nil, false
	}
	rest := text[loc[1]:]
	if b := fieldBoundaryRe.FindStringIndex(rest); b != nil {
		rest = rest[:b[0]]
	} else if b := closingQuoteRe.FindStringIndex(rest); b != nil {
		rest = rest[:b[0]]
	}
	return minimal(unescape(rest)), true
}

func minimal(commentary string) candidate {
	return candidate{
		"commentary":   commentary,
		"state":        "IDLE",
		"healthImpact": float64(0),
		"risks":        []interface{}{},
	}
}

// closingQuote returns the index of the first unescaped '"' in s, or -1.
func closingQuote(s string) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			return i
		}
	}
	return -1
}

// decodePartial decodes JSON escapes of an unterminated string value.
func decodePartial(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	// A dangling backslash would escape the quote we add below.
	if trailing := len(s) - len(strings.TrimRight(s, `\`)); trailing%2 == 1 {
		s = s[:len(s)-1]
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+rawControl.Replace(s)+`"`), &out); err == nil {
		return out
	}
	return unescape(s)
}

// rawControl escapes control characters models sometimes emit inside strings.
var rawControl = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

var unescaper = strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n")

func unescape(s string) string {
	return unescaper.Replace(s)
}
