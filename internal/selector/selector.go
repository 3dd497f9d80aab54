// Package selector picks the catalog messages sent to the translation
// provider in one run, under a character budget.
package selector

import (
	"strings"
	"unicode/utf8"

	"github.com/valpere/potrans/internal/catalog"
)

// previewLen is the number of characters of the stopping msgid reported in
// a Stop diagnostic.
const previewLen = 20

// Stop describes the message that made the running total exceed the budget.
type Stop struct {
	// Index is the position of the message in the catalog enumeration.
	Index   int
	Preview string
}

// Selection is the ordered candidate batch of one run.
type Selection struct {
	MsgIDs []string
	// Chars is the total character count of MsgIDs.
	Chars int
	// Stop is set when enumeration ended early on the budget.
	Stop *Stop
}

// Select walks the catalog in order and collects untranslated msgids until
// their cumulative character count would exceed budget. Characters are
// counted as Unicode code points. Skipped messages do not consume budget;
// the first accepted message that does not fit ends the scan.
func Select(c *catalog.Catalog, budget int) Selection {
	var sel Selection
	total := 0

	for idx, m := range c.Messages {
		if skip(m) {
			continue
		}

		total += utf8.RuneCountInString(m.MsgID)
		if total > budget {
			sel.Stop = &Stop{Index: idx, Preview: Preview(m.MsgID)}
			break
		}

		sel.MsgIDs = append(sel.MsgIDs, m.MsgID)
		sel.Chars = total
	}

	return sel
}

// skip applies the eligibility rules in order.
func skip(m *catalog.Message) bool {
	switch {
	case m.Obsolete:
		return true
	case m.IsTranslated():
		return true
	case strings.TrimSpace(m.MsgID) == "":
		return true
	// Embedded code blocks are easily mangled by the model.
	case strings.Contains(m.MsgID, "```"):
		return true
	// Likely templated or structured content rather than prose.
	case strings.Contains(m.MsgID, ";"):
		return true
	}
	return false
}

// Preview returns the first 20 characters of s.
func Preview(s string) string {
	n := 0
	for i := range s {
		if n == previewLen {
			return s[:i]
		}
		n++
	}
	return s
}
