package service

import (
	"fmt"
	"strings"
)

const (
	promptTextLimit   = 2000
	ragQueryTextLimit = 200
)

const persona = "You are Anya, \"Legally Blonde\" 👱‍♀️⚖️, a legal assistant with character."

// buildAnalysisPrompt asks for one AnalysisRecord about text. ragContext is
// included only when it is non-empty.
func buildAnalysisPrompt(domainDescription, text, ragContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nAudit level: %s\n\nText to analyze:\n%s\n\n", persona, domainDescription, truncateRunes(text, promptTextLimit))

	if ragContext != "" {
		fmt.Fprintf(&b, `Additional information from the knowledge base (use it ONLY if it really concerns the request):
%s

IMPORTANT:
- Use this information ONLY if it is relevant to the user's request
- If it does not match the topic, ignore it completely and rely on your own knowledge
- When you use it, cite the source as [Source 1], [Source 2] and so on

`, ragContext)
	}

	fmt.Fprintf(&b, `Your task is to analyze the SPECIFIC user text above and give a unique answer.

LEGAL REFERENCES:
- Always cite specific articles of laws and codes
- Cite court practice when it exists
- Every risk or violation you mention must name the rule that governs it
- Do not use vague phrases like "according to the law"

IMPORTANT:
- Analyze the text the user actually wrote
- Do not invent sources that were not provided
- Commentary may be up to 4000 characters; include a "🔍 Legal basis" section with at least 2-3 specific references
- Use bulleted lists, one item per line

Return JSON (start with { and end with }):
{
  "commentary": "Detailed analysis of the user's text in Anya's voice, with a '🔍 Legal basis' section.",
  "state": "DANGER|SUCCESS|IDLE",
  "healthImpact": a number from -50 to 50,
  "risks": [
    {
      "id": "unique_id",
      "title": "Specific risk found in the user's text",
      "description": "Risk description naming the governing rule",
      "severity": "HIGH|MEDIUM|LOW",
      "matrixReference": "Level: %s",
      "suggestion": "Concrete remediation naming the rules to follow"
    }
  ]
}`, domainDescription)
	return b.String()
}

func ragQuery(domainDescription, text string) string {
	return domainDescription + " " + truncateRunes(text, ragQueryTextLimit)
}

// buildRollupPrompt asks for the final analysis of a domain given its context block.
func buildRollupPrompt(domainName, context string, riskCount int) string {
	return fmt.Sprintf(`%s Carry out the final audit analysis.

Audit level: %s

Analysis context:
%s

Produce a comprehensive final analysis based on:
1. The identified risks (%d)
2. The audit questions and the user's answers
3. The documents uploaded in the chat
4. The user's profile

CRITICAL:
- If any audit question was answered "No" OR the score is below 20%%, you MUST state that risks were identified
- In that case riskMatrix MUST contain at least one risk
- If all answers are "Yes", the score is at least 80%% and the user neither uploaded documents nor asked questions, you MUST state that no risks were identified
- If any question is unanswered, state in summary and overallAssessment that the information provided for analysis is incomplete

Return JSON (start with { and end with }):
{
  "summary": "Short summary (3-5 sentences)",
  "riskMatrix": {
    "high": [risks with fields id, title, description, severity, matrixReference, suggestion],
    "medium": [...],
    "low": [...]
  },
  "recommendations": [
    {
      "priority": "HIGH|MEDIUM|LOW",
      "title": "Recommendation title",
      "description": "Detailed description",
      "actions": ["Action 1", "Action 2"]
    }
  ],
  "overallAssessment": "Overall assessment and conclusions (5-7 sentences)"
}`, persona, domainName, context, riskCount)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
