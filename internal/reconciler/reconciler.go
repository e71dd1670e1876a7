// Package reconciler turns a raw completion into an AnalysisRecord. It tolerates
// surrounding prose, truncated output and text that is not JSON at all.
package reconciler

import (
	"strings"

	"github.com/google/uuid"

	"legalflow/internal/model"
)

// Stage names the step of the pipeline that produced a record.
type Stage string

const (
	StageStrict     Stage = "strict"
	StageTruncation Stage = "truncation_repair"
	StageSalvage    Stage = "regex_salvage"
	StageText       Stage = "text_fallback"
)

const (
	// PreviewLength bounds commentary built from unstructured text.
	PreviewLength = 500
	// EchoPrefixLength is how much of the prompt is looked for in the completion.
	EchoPrefixLength = 100

	PlaceholderCommentary = "Analysis completed."
	TruncationNotice      = "... [response may be truncated]"
	FallbackSuggestion    = "Further analysis required"
)

// Options carries the context the pipeline cannot derive from the text itself.
type Options struct {
	// PromptEcho is the prompt that was sent; an echoed copy is cut from the completion.
	PromptEcho string
	// DomainDescription is used as matrix reference of risks synthesized from prose.
	DomainDescription string
	// NewID generates ids for risks that arrive without one. Defaults to uuid.
	NewID func() string
}

// Result is a reconciled record and the stage that recovered it.
type Result struct {
	Record model.AnalysisRecord
	Stage  Stage
}

// candidate is a loosely typed object awaiting normalization.
type candidate map[string]interface{}

type stage struct {
	name Stage
	run  func(text string) (candidate, bool)
}

var structuredStages = []stage{
	{StageStrict, strictParse},
	{StageTruncation, repairTruncation},
	{StageSalvage, salvageCommentary},
}

// Reconcile never fails: when nothing structured can be recovered the text itself
// becomes the commentary.
func Reconcile(raw string, opts Options) Result {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	text := stripEcho(raw, opts.PromptEcho)

	for _, s := range structuredStages {
		if c, ok := s.run(text); ok {
			return Result{Record: normalize(c, text, opts), Stage: s.name}
		}
	}
	return Result{Record: normalize(textFallback(text, opts), text, opts), Stage: StageText}
}

// stripEcho drops everything up to and including an echoed prompt prefix.
func stripEcho(text, prompt string) string {
	prefix := truncateRunes(prompt, EchoPrefixLength)
	if prefix == "" {
		return text
	}
	if i := strings.Index(text, prefix); i >= 0 {
		return strings.TrimSpace(text[i+len(prefix):])
	}
	return text
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
