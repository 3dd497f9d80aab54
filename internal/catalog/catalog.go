// Package catalog reads and writes gettext PO catalogs.
//
// A Catalog keeps its messages in file order so that a load/save cycle
// reproduces the original layout apart from the fields that were changed.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Message is one translatable unit of a catalog.
type Message struct {
	TranslatorComments []string
	ExtractedComments  []string
	References         []string
	Flags              []string
	// Previous* hold the "#|" values msgmerge keeps for fuzzy entries.
	PreviousMsgCtxt     string
	PreviousMsgID       string
	PreviousMsgIDPlural string

	MsgCtxt      string
	MsgID        string
	MsgIDPlural  string
	MsgStr       string
	MsgStrPlural []string

	// Obsolete entries are written back with the "#~" prefix and are never
	// translated.
	Obsolete bool
}

// IsSingular reports whether the message has a single form.
func (m *Message) IsSingular() bool {
	return m.MsgIDPlural == ""
}

// IsTranslated reports whether every form of the message has a translation.
func (m *Message) IsTranslated() bool {
	if m.IsSingular() {
		return m.MsgStr != ""
	}
	if len(m.MsgStrPlural) == 0 {
		return false
	}
	for _, s := range m.MsgStrPlural {
		if s == "" {
			return false
		}
	}
	return true
}

// SetMsgStr replaces the translation of a singular message.
func (m *Message) SetMsgStr(s string) {
	m.MsgStr = s
}

// HasFlag checks if a "#," flag is present.
func (m *Message) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag adds a "#," flag unless it is already present.
func (m *Message) AddFlag(flag string) {
	if !m.HasFlag(flag) {
		m.Flags = append(m.Flags, flag)
	}
}

// Catalog is a parsed PO file.
type Catalog struct {
	// Header is the metadata entry (msgid ""), nil when the file has none.
	Header   *Message
	Messages []*Message
}

// New returns an empty catalog with a header declaring lang.
func New(lang string) *Catalog {
	c := &Catalog{Header: &Message{MsgStr: "Content-Type: text/plain; charset=UTF-8\n"}}
	if lang != "" {
		c.SetHeaderField("Language", lang)
	}
	return c
}

// Language returns the target language declared in the header.
func (c *Catalog) Language() string {
	return c.HeaderField("Language")
}

// HeaderField returns a header field value by name, case-insensitively.
func (c *Catalog) HeaderField(name string) string {
	if c.Header == nil {
		return ""
	}
	for _, line := range strings.Split(c.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// SetHeaderField sets a header field, appending it when missing.
func (c *Catalog) SetHeaderField(name, value string) {
	if c.Header == nil {
		c.Header = &Message{}
	}

	lines := strings.Split(c.Header.MsgStr, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				lines[i] = name + ": " + value
				c.Header.MsgStr = strings.Join(lines, "\n")
				return
			}
		}
	}

	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = append(lines[:len(lines)-1], name+": "+value, "")
	} else {
		lines = append(lines, name+": "+value, "")
	}
	c.Header.MsgStr = strings.Join(lines, "\n")
}

// Stats counts live messages.
func (c *Catalog) Stats() (total, translated, untranslated int) {
	for _, m := range c.Messages {
		if m.Obsolete {
			continue
		}
		total++
		if m.IsTranslated() {
			translated++
		} else {
			untranslated++
		}
	}
	return
}

// Load parses the PO file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s as PO file: %w", path, err)
	}
	return c, nil
}

// Save writes the catalog to path, replacing any existing file. The new
// content is written to a temporary file in the same directory first so a
// failed write never leaves a truncated catalog behind.
func Save(path string, c *Catalog) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing catalog to %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := c.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing catalog to %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing catalog to %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
