package domain

import (
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// Code is an opaque 128-bit identifier (an installer GUID).
// It identifies product upgrade families, package instances and patches.
type Code struct {
	id uuid.UUID
}

// ParseCode parses a GUID in any of the usual spellings, braced or not.
func ParseCode(s string) (Code, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return Code{}, zerr.With(zerr.Wrap(ErrInvalidCode, err.Error()), "code", s)
	}
	return Code{id: id}, nil
}

// MustParseCode is like ParseCode but panics on malformed input.
// It is intended for constants and tests.
func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether the code is the nil GUID.
func (c Code) IsZero() bool {
	return c.id == uuid.Nil
}

// String renders the code in the registry form "{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}".
func (c Code) String() string {
	return "{" + strings.ToUpper(c.id.String()) + "}"
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
