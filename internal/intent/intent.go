// Package intent pattern-matches inbound chat text before any model
// call: it flags prompt-injection attempts and extracts social handles
// the user wants analyzed.
package intent

import (
	"regexp"
	"strings"
)

// injectionPatterns cover role-override phrasing, system-prompt
// disclosure requests, and well-known jailbreak tokens. Any single
// match triggers a refusal.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+|your\s+)?(previous|prior|above)\s+(instructions|prompts?|rules)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+|your\s+)?(previous|prior|above)\s+(instructions|prompts?|rules)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all|your)\s+(you|instructions|rules)`),
	regexp.MustCompile(`(?i)(reveal|show|print|repeat|output)\s+(me\s+)?(your|the)\s+(system\s+prompt|instructions|initial\s+prompt)`),
	regexp.MustCompile(`(?i)what\s+(is|are)\s+your\s+(system\s+prompt|initial\s+instructions)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|in)\b`),
	regexp.MustCompile(`(?i)act\s+as\s+(if\s+you\s+(are|were)|a\s+different)`),
	regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)\b`),
	regexp.MustCompile(`(?i)\bDAN\s+mode\b`),
	regexp.MustCompile(`(?i)\bjailbreak\b`),
	regexp.MustCompile(`(?i)\bdeveloper\s+mode\b`),
	regexp.MustCompile(`(?i)override\s+(your|the)\s+(rules|restrictions|guidelines)`),
}

// CheckInjection reports whether the text looks like an instruction
// override attempt. Matching is intentionally blunt; false positives
// only cost the user a refusal message.
func CheckInjection(text string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// handlePatterns is an ordered cascade; the first match wins. Each
// pattern captures the raw handle token in group 1.
var handlePatterns = []*regexp.Regexp{
	// Explicit profile URLs.
	regexp.MustCompile(`(?i)(?:twitter\.com|x\.com|warpcast\.com|farcaster\.xyz)/@?([A-Za-z0-9_.-]+)`),
	// "my twitter is foo", "my X handle: @foo". Requires a contextual
	// keyword so bare "my name is bob" never matches.
	regexp.MustCompile(`(?i)my\s+(?:twitter|x|farcaster|warpcast)(?:\s+(?:handle|username|profile|account))?\s*(?:is|[:;])\s*@?([A-Za-z0-9_.-]+)`),
	regexp.MustCompile(`(?i)my\s+(?:handle|username)\s*(?:is|[:;])\s*@?([A-Za-z0-9_.-]+)`),
	// Short corrections after a failed run: "it's actually foo", "try foo".
	regexp.MustCompile(`(?i)it'?s\s+actually\s+@?([A-Za-z0-9_.-]+)`),
	regexp.MustCompile(`(?i)^try\s+@?([A-Za-z0-9_.-]+)\s*$`),
}

// ExtractHandle returns the normalized subject handle named by the
// text, if any. No match means the turn goes down the normal reasoning
// path.
func ExtractHandle(text string) (string, bool) {
	for _, p := range handlePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return NormalizeHandle(m[1]), true
		}
	}
	return "", false
}

// NormalizeHandle strips the leading @ and lowercases, so "@Vitalik"
// and "vitalik" key the same profile.
func NormalizeHandle(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "@")))
}
