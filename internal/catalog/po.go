package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type field int

const (
	fieldNone field = iota
	fieldMsgCtxt
	fieldMsgID
	fieldMsgIDPlural
	fieldMsgStr
	fieldMsgStrPlural
)

// Parse reads a PO catalog.
func Parse(r io.Reader) (*Catalog, error) {
	c := &Catalog{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cur       *Message
		last      = fieldNone
		prevLast  = fieldNone
		pluralIdx int
		lineNum   int
		seenID    bool
	)

	flush := func() {
		if cur == nil {
			return
		}
		if cur.MsgID == "" && cur.MsgCtxt == "" && !cur.Obsolete && c.Header == nil && seenID {
			c.Header = cur
		} else if seenID {
			c.Messages = append(c.Messages, cur)
		}
		cur = nil
		last = fieldNone
		prevLast = fieldNone
		seenID = false
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		obsolete := false
		if strings.HasPrefix(line, "#~") {
			obsolete = true
			line = strings.TrimPrefix(line, "#~")
			line = strings.TrimPrefix(line, " ")
			if strings.HasPrefix(line, "|") {
				line = "#" + line
			}
		}

		// A comment, msgctxt or msgid after a msgstr starts the next entry
		// even without a separating blank line.
		if last == fieldMsgStr || last == fieldMsgStrPlural {
			if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "msgctxt ") || strings.HasPrefix(line, "msgid ") {
				flush()
			}
		}

		if cur == nil {
			cur = &Message{}
		}
		if obsolete {
			cur.Obsolete = true
		}

		if strings.HasPrefix(line, "#|") {
			if err := parsePrevious(cur, strings.TrimSpace(line[2:]), &prevLast); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			parseComment(cur, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "msgctxt "):
			cur.MsgCtxt = unquote(strings.TrimPrefix(line, "msgctxt "))
			last = fieldMsgCtxt
		case strings.HasPrefix(line, "msgid_plural "):
			cur.MsgIDPlural = unquote(strings.TrimPrefix(line, "msgid_plural "))
			last = fieldMsgIDPlural
		case strings.HasPrefix(line, "msgid "):
			cur.MsgID = unquote(strings.TrimPrefix(line, "msgid "))
			last = fieldMsgID
			seenID = true
		case strings.HasPrefix(line, "msgstr["):
			end := strings.Index(line, "]")
			if end < 0 {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			idx, err := strconv.Atoi(line[len("msgstr["):end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			for len(cur.MsgStrPlural) <= idx {
				cur.MsgStrPlural = append(cur.MsgStrPlural, "")
			}
			cur.MsgStrPlural[idx] = unquote(strings.TrimSpace(line[end+1:]))
			pluralIdx = idx
			last = fieldMsgStrPlural
		case strings.HasPrefix(line, "msgstr "):
			cur.MsgStr = unquote(strings.TrimPrefix(line, "msgstr "))
			last = fieldMsgStr
		case strings.HasPrefix(strings.TrimSpace(line), `"`):
			val := unquote(line)
			switch last {
			case fieldMsgCtxt:
				cur.MsgCtxt += val
			case fieldMsgID:
				cur.MsgID += val
			case fieldMsgIDPlural:
				cur.MsgIDPlural += val
			case fieldMsgStr:
				cur.MsgStr += val
			case fieldMsgStrPlural:
				cur.MsgStrPlural[pluralIdx] += val
			default:
				return nil, fmt.Errorf("line %d: continuation without keyword", lineNum)
			}
		default:
			return nil, fmt.Errorf("line %d: unexpected content: %s", lineNum, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	flush()

	return c, nil
}

func parseComment(m *Message, line string) {
	switch {
	case strings.HasPrefix(line, "#:"):
		m.References = append(m.References, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				m.Flags = append(m.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		m.ExtractedComments = append(m.ExtractedComments, strings.TrimSpace(line[2:]))
	default:
		m.TranslatorComments = append(m.TranslatorComments, strings.TrimPrefix(line[1:], " "))
	}
}

// parsePrevious handles the body of a "#|" line: the msgctxt, msgid and
// msgid_plural an entry had before msgmerge marked it fuzzy, possibly split
// over continuation lines.
func parsePrevious(m *Message, body string, last *field) error {
	switch {
	case strings.HasPrefix(body, "msgctxt "):
		m.PreviousMsgCtxt = unquote(strings.TrimPrefix(body, "msgctxt "))
		*last = fieldMsgCtxt
	case strings.HasPrefix(body, "msgid_plural "):
		m.PreviousMsgIDPlural = unquote(strings.TrimPrefix(body, "msgid_plural "))
		*last = fieldMsgIDPlural
	case strings.HasPrefix(body, "msgid "):
		m.PreviousMsgID = unquote(strings.TrimPrefix(body, "msgid "))
		*last = fieldMsgID
	case strings.HasPrefix(body, `"`):
		val := unquote(body)
		switch *last {
		case fieldMsgCtxt:
			m.PreviousMsgCtxt += val
		case fieldMsgID:
			m.PreviousMsgID += val
		case fieldMsgIDPlural:
			m.PreviousMsgIDPlural += val
		default:
			return fmt.Errorf("previous-value continuation without keyword")
		}
	default:
		return fmt.Errorf("unexpected previous-value line: #| %s", body)
	}
	return nil
}

// Write serializes the catalog in PO format.
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	first := true
	if c.Header != nil {
		writeMessage(bw, c.Header)
		first = false
	}
	for _, m := range c.Messages {
		if !first {
			bw.WriteString("\n")
		}
		writeMessage(bw, m)
		first = false
	}

	return bw.Flush()
}

func writeMessage(w *bufio.Writer, m *Message) {
	prefix := ""
	if m.Obsolete {
		prefix = "#~ "
	}

	for _, s := range m.TranslatorComments {
		if s == "" {
			w.WriteString("#\n")
			continue
		}
		fmt.Fprintf(w, "# %s\n", s)
	}
	for _, s := range m.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", s)
	}
	for _, s := range m.References {
		fmt.Fprintf(w, "#: %s\n", s)
	}
	if len(m.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(m.Flags, ", "))
	}
	prevPrefix := "#| "
	if m.Obsolete {
		prevPrefix = "#~| "
	}
	if m.PreviousMsgCtxt != "" {
		writeField(w, prevPrefix, "msgctxt", m.PreviousMsgCtxt)
	}
	if m.PreviousMsgID != "" || m.PreviousMsgIDPlural != "" {
		writeField(w, prevPrefix, "msgid", m.PreviousMsgID)
	}
	if m.PreviousMsgIDPlural != "" {
		writeField(w, prevPrefix, "msgid_plural", m.PreviousMsgIDPlural)
	}

	if m.MsgCtxt != "" {
		writeField(w, prefix, "msgctxt", m.MsgCtxt)
	}
	writeField(w, prefix, "msgid", m.MsgID)
	if m.IsSingular() {
		writeField(w, prefix, "msgstr", m.MsgStr)
		return
	}

	writeField(w, prefix, "msgid_plural", m.MsgIDPlural)
	forms := m.MsgStrPlural
	if len(forms) == 0 {
		forms = []string{"", ""}
	}
	for i, s := range forms {
		writeField(w, prefix, fmt.Sprintf("msgstr[%d]", i), s)
	}
}

// writeField writes a keyword and its quoted value, splitting after each
// embedded newline the way msgcat does.
func writeField(w *bufio.Writer, prefix, keyword, value string) {
	if !strings.Contains(strings.TrimSuffix(value, "\n"), "\n") {
		fmt.Fprintf(w, "%s%s %s\n", prefix, keyword, quote(value))
		return
	}

	fmt.Fprintf(w, "%s%s \"\"\n", prefix, keyword)
	parts := strings.SplitAfter(value, "\n")
	for _, part := range parts {
		if part == "" {
			continue
		}
		fmt.Fprintf(w, "%s%s\n", prefix, quote(part))
	}
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
