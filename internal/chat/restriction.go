package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// TextLimits bounds a free-form text reply.
type TextLimits struct {
	MinLength int `json:"minLength,omitempty"`
	MaxLength int `json:"maxLength,omitempty"`
}

// NumberLimits bounds a numeric reply.
type NumberLimits struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	IntegerOnly bool     `json:"integerOnly,omitempty"`
}

// FileLimits restricts a single-file reply.
type FileLimits struct {
	MimeTypes []string `json:"mimeTypes,omitempty"`
	MaxSize   int64    `json:"maxSize,omitempty"`
}

// FilesLimits restricts a multi-file reply.
type FilesLimits struct {
	FileLimits
	MaxAmount int `json:"maxAmount,omitempty"`
}

// Option is one enumerated choice. Label defaults to Value at render time.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// DisplayLabel returns the option's label, falling back to its value.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// OptionLimits enumerates the choices for a single-option reply.
type OptionLimits struct {
	Options []Option `json:"options"`
}

// OptionsLimits enumerates the choices for a multi-option reply.
type OptionsLimits struct {
	Options   []Option `json:"options"`
	MaxAmount int      `json:"maxAmount,omitempty"`
}

// DatetimeLimits bounds the selectable range of a datetime reply.
type DatetimeLimits struct {
	Min *time.Time `json:"min,omitempty"`
	Max *time.Time `json:"max,omitempty"`
}

// ReplyRestriction declares what kind of reply the server is waiting
// for and its constraints. BodyType determines which limits field may
// be set; there is exactly one legal limits shape per reply kind, and
// all-nil limits mean "no constraint beyond the type itself".
type ReplyRestriction struct {
	BodyType BodyType

	Text     *TextLimits
	Number   *NumberLimits
	File     *FileLimits
	Files    *FilesLimits
	Option   *OptionLimits
	Options  *OptionsLimits
	Datetime *DatetimeLimits
}

type restrictionWire struct {
	BodyType   BodyType        `json:"bodyType"`
	BodyLimits json.RawMessage `json:"bodyLimits,omitempty"`
}

// UnmarshalJSON decodes {bodyType, bodyLimits}, selecting the limits
// shape from the tag and rejecting tags a user could never answer.
func (r *ReplyRestriction) UnmarshalJSON(data []byte) error {
	var w restrictionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.BodyType {
	case BodyText, BodyNumber, BodyBoolean, BodyFile, BodyFiles,
		BodyOption, BodyOptions, BodyDatetime:
	default:
		return fmt.Errorf("reply restriction: invalid body type %q", w.BodyType)
	}

	r.BodyType = w.BodyType
	if len(w.BodyLimits) == 0 || string(w.BodyLimits) == "null" {
		return nil
	}

	var err error
	switch w.BodyType {
	case BodyText:
		r.Text = &TextLimits{}
		err = json.Unmarshal(w.BodyLimits, r.Text)
	case BodyNumber:
		r.Number = &NumberLimits{}
		err = json.Unmarshal(w.BodyLimits, r.Number)
	case BodyBoolean:
		// Boolean replies have no limits shape.
		return fmt.Errorf("reply restriction: boolean takes no limits")
	case BodyFile:
		r.File = &FileLimits{}
		err = json.Unmarshal(w.BodyLimits, r.File)
	case BodyFiles:
		r.Files = &FilesLimits{}
		err = json.Unmarshal(w.BodyLimits, r.Files)
	case BodyOption:
		r.Option = &OptionLimits{}
		err = json.Unmarshal(w.BodyLimits, r.Option)
	case BodyOptions:
		r.Options = &OptionsLimits{}
		err = json.Unmarshal(w.BodyLimits, r.Options)
	case BodyDatetime:
		r.Datetime = &DatetimeLimits{}
		err = json.Unmarshal(w.BodyLimits, r.Datetime)
	}
	if err != nil {
		return fmt.Errorf("reply restriction %q: %w", w.BodyType, err)
	}
	return nil
}

// MarshalJSON encodes the restriction back into {bodyType, bodyLimits}.
func (r ReplyRestriction) MarshalJSON() ([]byte, error) {
	var limits any
	switch r.BodyType {
	case BodyText:
		if r.Text != nil {
			limits = r.Text
		}
	case BodyNumber:
		if r.Number != nil {
			limits = r.Number
		}
	case BodyFile:
		if r.File != nil {
			limits = r.File
		}
	case BodyFiles:
		if r.Files != nil {
			limits = r.Files
		}
	case BodyOption:
		if r.Option != nil {
			limits = r.Option
		}
	case BodyOptions:
		if r.Options != nil {
			limits = r.Options
		}
	case BodyDatetime:
		if r.Datetime != nil {
			limits = r.Datetime
		}
	}
	return json.Marshal(struct {
		BodyType   BodyType `json:"bodyType"`
		BodyLimits any      `json:"bodyLimits,omitempty"`
	}{r.BodyType, limits})
}
