package applier

import (
	"reflect"
	"testing"

	"github.com/valpere/potrans/internal/catalog"
)

func TestApply(t *testing.T) {
	hello := &catalog.Message{MsgID: "Hello"}
	world := &catalog.Message{MsgID: "World"}
	missing := &catalog.Message{MsgID: "Missing"}
	done := &catalog.Message{MsgID: "Done", MsgStr: "Fait"}
	plural := &catalog.Message{MsgID: "Hello", MsgIDPlural: "Hellos", MsgStrPlural: []string{"", ""}}
	obsolete := &catalog.Message{MsgID: "World", Obsolete: true}

	c := catalog.New("fr")
	c.Messages = []*catalog.Message{hello, world, missing, done, plural, obsolete}

	changes := Apply(c, map[string]string{
		"Hello": "Bonjour",
		"World": "Monde",
		"Done":  "Terminé",
	}, Options{})

	if hello.MsgStr != "Bonjour" || !hello.IsTranslated() {
		t.Errorf("hello = %+v", hello)
	}
	if world.MsgStr != "Monde" {
		t.Errorf("world = %+v", world)
	}
	if missing.MsgStr != "" {
		t.Errorf("message absent from mapping changed: %+v", missing)
	}
	if done.MsgStr != "Fait" {
		t.Errorf("translated message overwritten: %+v", done)
	}
	if !reflect.DeepEqual(plural.MsgStrPlural, []string{"", ""}) || plural.MsgStr != "" {
		t.Errorf("plural message changed: %+v", plural)
	}
	if obsolete.MsgStr != "" {
		t.Errorf("obsolete message changed: %+v", obsolete)
	}

	want := []Change{{MsgID: "Hello", MsgStr: "Bonjour"}, {MsgID: "World", MsgStr: "Monde"}}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes = %+v, want %+v", changes, want)
	}
}

func TestApply_DuplicateMsgIDs(t *testing.T) {
	first := &catalog.Message{MsgID: "Save", MsgCtxt: "menu"}
	second := &catalog.Message{MsgID: "Save", MsgCtxt: "button"}

	c := catalog.New("de")
	c.Messages = []*catalog.Message{first, second}

	changes := Apply(c, map[string]string{"Save": "Speichern"}, Options{})

	if first.MsgStr != "Speichern" || second.MsgStr != "Speichern" {
		t.Errorf("expected both messages translated: %q %q", first.MsgStr, second.MsgStr)
	}
	if len(changes) != 2 {
		t.Errorf("changes = %d, want 2", len(changes))
	}
}

func TestApply_MarkFuzzy(t *testing.T) {
	m := &catalog.Message{MsgID: "Hello", Flags: []string{"c-format"}}
	empty := &catalog.Message{MsgID: "World"}

	c := catalog.New("fr")
	c.Messages = []*catalog.Message{m, empty}

	Apply(c, map[string]string{"Hello": "Bonjour", "World": ""}, Options{MarkFuzzy: true})

	if !reflect.DeepEqual(m.Flags, []string{"c-format", "fuzzy"}) {
		t.Errorf("flags = %v", m.Flags)
	}
	if empty.HasFlag("fuzzy") {
		t.Error("empty translation should not be flagged")
	}
}

func TestApply_EmptyMapping(t *testing.T) {
	m := &catalog.Message{MsgID: "Hello"}
	c := catalog.New("fr")
	c.Messages = []*catalog.Message{m}

	if changes := Apply(c, nil, Options{}); len(changes) != 0 {
		t.Errorf("changes = %+v, want none", changes)
	}
	if m.MsgStr != "" {
		t.Errorf("message changed: %+v", m)
	}
}
