package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// BodyType tags the payload kind of a message body.
type BodyType string

const (
	BodyCommand  BodyType = "command"
	BodyText     BodyType = "text"
	BodyNumber   BodyType = "number"
	BodyBoolean  BodyType = "boolean"
	BodyFile     BodyType = "file"
	BodyFiles    BodyType = "files"
	BodyOption   BodyType = "option"
	BodyOptions  BodyType = "options"
	BodyDatetime BodyType = "datetime"
	BodyMarkdown BodyType = "markdown"
)

// UserSubmittable reports whether a user may author a body of this type.
// Markdown is server-only.
func (t BodyType) UserSubmittable() bool {
	switch t {
	case BodyCommand, BodyText, BodyNumber, BodyBoolean,
		BodyFile, BodyFiles, BodyOption, BodyOptions, BodyDatetime:
		return true
	}
	return false
}

// Body is a closed tagged union over message payload kinds. Exactly one
// content field is meaningful, selected by Type. Mismatched tag/content
// pairs are rejected when decoding.
type Body struct {
	Type BodyType

	Command  string
	Text     string
	Number   float64
	Bool     bool
	File     FileMeta
	Files    []FileMeta
	Option   string
	Options  []string
	Datetime time.Time
	Markdown string
}

// strictISO matches the exact wire format for timestamps: ISO-8601 UTC
// with optional fractional seconds.
var strictISO = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z$`)

// ParseTimestamp parses s if it matches the strict ISO-8601 UTC wire
// format. Strings in any other shape (dates without a time component,
// offsets instead of Z) are not timestamps.
func ParseTimestamp(s string) (time.Time, bool) {
	if !strictISO.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type bodyWire struct {
	Type    BodyType        `json:"type"`
	Content json.RawMessage `json:"content"`
}

// UnmarshalJSON decodes the {type, content} wire shape, enforcing the
// single legal content shape for each tag.
func (b *Body) UnmarshalJSON(data []byte) error {
	var w bodyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.Type {
	case BodyCommand:
		return decodeContent(w, &b.Command, b, w.Type)
	case BodyText:
		return decodeContent(w, &b.Text, b, w.Type)
	case BodyMarkdown:
		return decodeContent(w, &b.Markdown, b, w.Type)
	case BodyNumber:
		return decodeContent(w, &b.Number, b, w.Type)
	case BodyBoolean:
		return decodeContent(w, &b.Bool, b, w.Type)
	case BodyFile:
		return decodeContent(w, &b.File, b, w.Type)
	case BodyFiles:
		return decodeContent(w, &b.Files, b, w.Type)
	case BodyOption:
		return decodeContent(w, &b.Option, b, w.Type)
	case BodyOptions:
		return decodeContent(w, &b.Options, b, w.Type)
	case BodyDatetime:
		var raw string
		if err := json.Unmarshal(w.Content, &raw); err != nil {
			return fmt.Errorf("message body %q: %w", w.Type, err)
		}
		ts, ok := ParseTimestamp(raw)
		if !ok {
			return fmt.Errorf("message body %q: invalid timestamp %q", w.Type, raw)
		}
		b.Type = w.Type
		b.Datetime = ts
		return nil
	case "":
		return fmt.Errorf("message body: missing type")
	default:
		return fmt.Errorf("message body: unknown type %q", w.Type)
	}
}

func decodeContent[T any](w bodyWire, dst *T, b *Body, t BodyType) error {
	if err := json.Unmarshal(w.Content, dst); err != nil {
		return fmt.Errorf("message body %q: %w", t, err)
	}
	b.Type = t
	return nil
}

// MarshalJSON encodes the body back into the {type, content} wire shape.
func (b Body) MarshalJSON() ([]byte, error) {
	var content any
	switch b.Type {
	case BodyCommand:
		content = b.Command
	case BodyText:
		content = b.Text
	case BodyMarkdown:
		content = b.Markdown
	case BodyNumber:
		content = b.Number
	case BodyBoolean:
		content = b.Bool
	case BodyFile:
		content = b.File
	case BodyFiles:
		files := b.Files
		if files == nil {
			files = []FileMeta{}
		}
		content = files
	case BodyOption:
		content = b.Option
	case BodyOptions:
		opts := b.Options
		if opts == nil {
			opts = []string{}
		}
		content = opts
	case BodyDatetime:
		content = b.Datetime.UTC().Format("2006-01-02T15:04:05.000Z")
	default:
		return nil, fmt.Errorf("message body: unknown type %q", b.Type)
	}
	return json.Marshal(struct {
		Type    BodyType `json:"type"`
		Content any      `json:"content"`
	}{b.Type, content})
}
