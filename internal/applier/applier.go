// Package applier writes provider results back into a catalog.
package applier

import "github.com/valpere/potrans/internal/catalog"

// Change records one message updated by Apply.
type Change struct {
	MsgID  string
	MsgStr string
}

type Options struct {
	// MarkFuzzy flags every machine translation as fuzzy so it shows up
	// in a translator's review queue.
	MarkFuzzy bool
}

// Apply sets msgstr on every live, untranslated, singular message whose msgid
// appears in translations. Messages missing from translations are left
// untouched. The catalog is modified in place and not persisted.
func Apply(c *catalog.Catalog, translations map[string]string, opts Options) []Change {
	var changes []Change

	for _, m := range c.Messages {
		if m.Obsolete || m.IsTranslated() || !m.IsSingular() {
			continue
		}
		translated, ok := translations[m.MsgID]
		if !ok {
			continue
		}

		m.SetMsgStr(translated)
		if opts.MarkFuzzy && translated != "" {
			m.AddFlag("fuzzy")
		}
		changes = append(changes, Change{MsgID: m.MsgID, MsgStr: translated})
	}

	return changes
}
