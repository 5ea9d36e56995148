// Package reply is the input resolution engine: given the reply
// expectation derived by the timeline, it selects the input modality,
// validates and constrains entered values, and packages typed
// submissions.
package reply

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/waylis/waycli/internal/chat"
)

// Kind is the input modality selected for the current expectation.
type Kind string

const (
	// KindCommand means the server declared no restriction: the only
	// legal next action is choosing from the command catalog.
	KindCommand  Kind = "command"
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindDatetime Kind = "datetime"
	KindOption   Kind = "option"
	KindOptions  Kind = "options"
	KindFile     Kind = "file"
	KindFiles    Kind = "files"
)

// Resolve maps the expected restriction to the input modality.
func Resolve(expected *chat.ReplyRestriction) Kind {
	if expected == nil {
		return KindCommand
	}
	switch expected.BodyType {
	case chat.BodyText:
		return KindText
	case chat.BodyNumber:
		return KindNumber
	case chat.BodyBoolean:
		return KindBoolean
	case chat.BodyDatetime:
		return KindDatetime
	case chat.BodyOption:
		return KindOption
	case chat.BodyOptions:
		return KindOptions
	case chat.BodyFile:
		return KindFile
	case chat.BodyFiles:
		return KindFiles
	default:
		return KindCommand
	}
}

// ValidationError is a client-side rejection: it is shown as a warning
// and the operation is never attempted over the network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// TextBody packages a free-form text answer. Length bounds are enforced
// by the input widget; here only emptiness is rejected.
func TextBody(content string, _ *chat.TextLimits) (chat.Body, error) {
	if content == "" {
		return chat.Body{}, validationf("enter a message first")
	}
	return chat.Body{Type: chat.BodyText, Text: content}, nil
}

// NumberBody parses and bounds a numeric answer.
func NumberBody(raw string, limits *chat.NumberLimits) (chat.Body, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return chat.Body{}, validationf("enter a number first")
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return chat.Body{}, validationf("%q is not a number", raw)
	}
	if limits != nil {
		if limits.IntegerOnly && n != float64(int64(n)) {
			return chat.Body{}, validationf("only whole numbers are allowed")
		}
		if limits.Min != nil && n < *limits.Min {
			return chat.Body{}, validationf("the number must be at least %v", *limits.Min)
		}
		if limits.Max != nil && n > *limits.Max {
			return chat.Body{}, validationf("the number must be at most %v", *limits.Max)
		}
	}
	return chat.Body{Type: chat.BodyNumber, Number: n}, nil
}

// BooleanBody packages a yes/no answer. There is no intermediate state.
func BooleanBody(yes bool) chat.Body {
	return chat.Body{Type: chat.BodyBoolean, Bool: yes}
}

// DatetimeBody packages a timestamp answer. A zero time is a warning,
// not a submission attempt.
func DatetimeBody(ts time.Time, limits *chat.DatetimeLimits) (chat.Body, error) {
	if ts.IsZero() {
		return chat.Body{}, validationf("choose a date and time first")
	}
	if limits != nil {
		if limits.Min != nil && ts.Before(*limits.Min) {
			return chat.Body{}, validationf("the date must not be before %s", limits.Min.Format("2006-01-02 15:04"))
		}
		if limits.Max != nil && ts.After(*limits.Max) {
			return chat.Body{}, validationf("the date must not be after %s", limits.Max.Format("2006-01-02 15:04"))
		}
	}
	return chat.Body{Type: chat.BodyDatetime, Datetime: ts}, nil
}

// OptionBody packages a single choice from the enumerated set.
func OptionBody(value string, limits *chat.OptionLimits) (chat.Body, error) {
	if value == "" {
		return chat.Body{}, validationf("pick an option first")
	}
	if limits != nil && !optionAllowed(value, limits.Options) {
		return chat.Body{}, validationf("%q is not one of the offered options", value)
	}
	return chat.Body{Type: chat.BodyOption, Option: value}, nil
}

// OptionsBody packages one or more choices, capped by MaxAmount.
func OptionsBody(values []string, limits *chat.OptionsLimits) (chat.Body, error) {
	if len(values) == 0 {
		return chat.Body{}, validationf("pick at least one option first")
	}
	if limits != nil {
		if limits.MaxAmount > 0 && len(values) > limits.MaxAmount {
			return chat.Body{}, validationf("pick at most %d options", limits.MaxAmount)
		}
		for _, v := range values {
			if !optionAllowed(v, limits.Options) {
				return chat.Body{}, validationf("%q is not one of the offered options", v)
			}
		}
	}
	return chat.Body{Type: chat.BodyOptions, Options: values}, nil
}

func optionAllowed(value string, options []chat.Option) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// ResolveOptionLabels maps stored raw option values back to display
// labels by locating the system message the answer replies to. When
// that message is not in the loaded window, raw values are returned
// verbatim; this is best-effort, not an error.
func ResolveOptionLabels(values []string, msg chat.Message, window []chat.Message) []string {
	if msg.ReplyTo == "" {
		return values
	}

	var options []chat.Option
	for i := range window {
		if window[i].ID != msg.ReplyTo {
			continue
		}
		r := window[i].ReplyRestriction
		if r == nil {
			return values
		}
		switch {
		case r.Option != nil:
			options = r.Option.Options
		case r.Options != nil:
			options = r.Options.Options
		}
		break
	}
	if options == nil {
		return values
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v
		for _, o := range options {
			if o.Value == v {
				out[i] = o.DisplayLabel()
				break
			}
		}
	}
	return out
}
