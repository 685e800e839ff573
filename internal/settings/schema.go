package settings

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind is the declared type of a settings key.
type Kind string

const (
	// KindString accepts any string value.
	KindString Kind = "string"
	// KindURL accepts an absolute http(s) URL, or an empty string to unset.
	KindURL Kind = "url"
	// KindBool accepts true/false, on/off, yes/no and 1/0.
	KindBool Kind = "bool"
	// KindNoteType accepts the note subtype names flash and note, or their wire values 0 and 1.
	KindNoteType Kind = "notetype"
)

// Well known settings keys.
const (
	KeyBlinkoURL   = "blinko_url"
	KeyBlinkoToken = "blinko_token"
	KeyNoteType    = "note_type"
	KeyTagsEnabled = "tags_enabled"
	KeyDisplayName = "display_name"
)

// Definition describes one schema entry.
type Definition struct {
	Kind    Kind
	Default string
}

// Schema is the fixed, process-wide settings schema.
// Structure is not user mutable, only values are.
var Schema = map[string]Definition{ //nolint:gochecknoglobals
	KeyBlinkoURL:   {Kind: KindURL, Default: ""},
	KeyBlinkoToken: {Kind: KindString, Default: ""},
	KeyNoteType:    {Kind: KindNoteType, Default: "flash"},
	KeyTagsEnabled: {Kind: KindBool, Default: "false"},
	KeyDisplayName: {Kind: KindString, Default: ""},
}

var validate = validator.New() //nolint:gochecknoglobals

// coerce normalizes a raw value to the canonical form for the key's declared kind.
func coerce(def Definition, raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	switch def.Kind {
	case KindString:
		return raw, nil
	case KindURL:
		if raw == "" {
			return "", nil
		}

		raw = strings.TrimRight(raw, "/")
		if err := validate.Var(raw, "url"); err != nil {
			return "", fmt.Errorf("%w: %q is not a valid url", ErrInvalidValue, raw)
		}

		return raw, nil
	case KindBool:
		switch strings.ToLower(raw) {
		case "true", "on", "yes", "1":
			return "true", nil
		case "false", "off", "no", "0":
			return "false", nil
		}

		return "", fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
	case KindNoteType:
		switch strings.ToLower(raw) {
		case "flash", "0":
			return "flash", nil
		case "note", "1":
			return "note", nil
		}

		return "", fmt.Errorf("%w: %q is not a note type", ErrInvalidValue, raw)
	}

	return "", fmt.Errorf("%w: unhandled kind %q", ErrInvalidValue, def.Kind)
}
