// Package runner performs one translation pass over a catalog: select the
// candidates, ask the provider once, and merge the answers back.
package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/potrans/internal/applier"
	"github.com/valpere/potrans/internal/catalog"
	"github.com/valpere/potrans/internal/placeholder"
	"github.com/valpere/potrans/internal/selector"
	"github.com/valpere/potrans/internal/translator"
)

type Options struct {
	// Budget is the maximum character count sent to the provider.
	Budget    int
	MarkFuzzy bool
	// OnLog receives progress and diagnostic messages.
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

type Result struct {
	Language  string
	Selection selector.Selection
	// Translations is the mapping returned by the provider.
	Translations map[string]string
	Changes      []applier.Change
}

// Run translates the eligible messages of c in place. The catalog is only
// modified after the provider call succeeded; on error it is left untouched.
// When no message is eligible the provider is not called and the returned
// Result has no Translations or Changes.
func Run(ctx context.Context, c *catalog.Catalog, p translator.Provider, opts Options) (*Result, error) {
	res := &Result{Language: c.Language()}

	res.Selection = selector.Select(c, opts.Budget)
	if stop := res.Selection.Stop; stop != nil {
		opts.log("Stopping translation at message %d: %s", stop.Index, stop.Preview)
	}

	opts.log("Translating %d messages into %s", len(res.Selection.MsgIDs), res.Language)
	if len(res.Selection.MsgIDs) == 0 {
		return res, nil
	}

	translations, err := p.Translate(ctx, res.Selection.MsgIDs, res.Language)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	res.Translations = translations

	res.Changes = applier.Apply(c, translations, applier.Options{MarkFuzzy: opts.MarkFuzzy})
	for _, ch := range res.Changes {
		if ch.MsgStr == "" {
			continue
		}
		if missing := placeholder.Missing(ch.MsgID, ch.MsgStr); len(missing) > 0 {
			opts.log("Translation of %q lost placeholders %s", selector.Preview(ch.MsgID), strings.Join(missing, " "))
		}
	}
	return res, nil
}
