// Package postprocess removes common LLM artifacts from a completion before
// its JSON payload is decoded.
//
// Chat models asked for a bare JSON object still tend to think out loud,
// announce the answer, or wrap it in a markdown code fence.
package postprocess

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CleanJSON strips LLM artifacts in three phases and returns the trimmed
// result:
//  1. Thinking / reasoning block removal
//  2. Lead-in removal ("Here is the JSON:")
//  3. Markdown code fence unwrapping
//
// Text without artifacts is returned trimmed and otherwise unchanged, so a
// malformed payload still fails to decode downstream. Text that already is
// valid JSON is never rewritten, so tags quoted inside its strings survive.
func CleanJSON(text string) string {
	if trimmed := strings.TrimSpace(text); json.Valid([]byte(trimmed)) {
		return trimmed
	}
	text = removeThinkingBlocks(text)
	text = removeLeadIns(text)
	text = unwrapCodeFence(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// Each tag variant is listed explicitly because RE2 has no backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: lead-ins ---

// leadInPatterns are anchored to the start and require a colon to avoid
// eating legitimate content.
var leadInPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [translated] [JSON|translation|result|output]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated |requested )?(?:json|translations?|result|output)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] ...:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the)? (?:translated |requested )?(?:json|translations?|result|output)\s*:`),
}

func removeLeadIns(text string) string {
	for _, re := range leadInPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: code fences ---

var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n?(.*?)\\s*```$")

// unwrapCodeFence returns the body of a code fence when it wraps the whole
// text.
func unwrapCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}
