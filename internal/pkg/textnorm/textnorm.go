// Package textnorm applies Unicode normalization to term strings.
package textnorm

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Mode selects how terms are normalized before comparison.
type Mode string

// Supported modes.
const (
	ModeNone Mode = "none"
	ModeNFC  Mode = "nfc"
)

// ParseMode validates a mode name. The empty string means ModeNone.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeNFC:
		return ModeNFC, nil
	default:
		return "", fmt.Errorf("unknown normalization mode %q (must be none or nfc)", s)
	}
}

// Func returns the normalization function for the mode.
// Terms that are canonically equivalent compare equal under ModeNFC;
// no case folding or compatibility mapping is applied.
func (m Mode) Func() func(string) string {
	if m == ModeNFC {
		return norm.NFC.String
	}
	return identity
}

func identity(s string) string { return s }
