// Package placeholder finds the machine-read parts of a message (printf
// directives, brace variables, HTML tags) and reports which of them a
// translation lost. A translation that drops one usually breaks at runtime.
package placeholder

import (
	"regexp"
	"sort"
)

var (
	// printf directives: %s, %d, %5.2f, %1$s, %-10s. %% is a literal percent.
	rePrintf = regexp.MustCompile(`%(?:\d+\$)?[-+#0]*(?:\d+|\*)?(?:\.(?:\d+|\*))?(?:hh|h|ll|l|L|q|j|z|t)?[diouxXeEfFgGaAcspqvTtUb%]`)

	// brace variables: {name}, {0}, {{name}}
	reBrace = regexp.MustCompile(`\{\{?[A-Za-z0-9_.]+\}?\}`)

	// HTML/XML tags: opening, closing, and self-closing
	reHTMLTag = regexp.MustCompile(`<[^<>\s][^<>]*>`)
)

// Extract returns the placeholders of text grouped by kind (printf, brace,
// tag), each group in order of appearance. Literal %% is not a placeholder.
func Extract(text string) []string {
	var found []string
	for _, re := range []*regexp.Regexp{rePrintf, reBrace, reHTMLTag} {
		for _, m := range re.FindAllString(text, -1) {
			if m == "%%" {
				continue
			}
			found = append(found, m)
		}
	}
	return found
}

// Missing returns the placeholders of source that occur fewer times in
// translation, sorted. Reordering is allowed; positional directives such as
// %1$s exist for exactly that.
func Missing(source, translation string) []string {
	want := count(Extract(source))
	if len(want) == 0 {
		return nil
	}
	have := count(Extract(translation))

	var missing []string
	for ph, n := range want {
		if have[ph] < n {
			missing = append(missing, ph)
		}
	}
	sort.Strings(missing)
	return missing
}

func count(items []string) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		m[it]++
	}
	return m
}
