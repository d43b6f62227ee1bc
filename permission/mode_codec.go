package permission

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned for mode literals that are not made of at most
// three binary digits (or three symbolic positions).
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode converts a decimal-digit literal such as 110 or 11 into a [Mode].
// Each decimal digit must be 0 or 1, read right to left as other, group, owner.
// Leading zeros vanish in integer literals, so 11 means 011.
func ParseMode(n int) (Mode, error) {
	if n < 0 || n > 111 {
		return ModeNone, fmt.Errorf("%w: %d", ErrInvalidMode, n)
	}

	var m Mode
	for bit := 0; bit < bitCount; bit++ {
		switch n % 10 {
		case 0:
		case 1:
			m = m.Set(bit)
		default:
			return ModeNone, fmt.Errorf("%w: %d", ErrInvalidMode, n)
		}
		n /= 10
	}

	return m, nil
}

// MustParseMode is like ParseMode but panics on invalid input. Intended for
// package-level route declarations.
func MustParseMode(n int) Mode {
	m, err := ParseMode(n)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseModeString accepts either binary digits ("110", "1") or the
// three-position symbolic form ("ug-", "--o").
func ParseModeString(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 3 {
		return ModeNone, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}

	if isDigits(s) {
		return parseDigitString(s)
	}

	if len(s) != 3 {
		return ModeNone, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}

	letters := [3]byte{'u', 'g', 'o'}
	var m Mode
	for i := 0; i < 3; i++ {
		switch s[i] {
		case '-':
		case letters[i]:
			m = m.Set(BitOwner - i)
		default:
			return ModeNone, fmt.Errorf("%w: %q", ErrInvalidMode, s)
		}
	}

	return m, nil
}

func parseDigitString(s string) (Mode, error) {
	var m Mode
	for i := 0; i < len(s); i++ {
		bit := len(s) - 1 - i
		switch s[i] {
		case '0':
		case '1':
			m = m.Set(bit)
		default:
			return ModeNone, fmt.Errorf("%w: %q", ErrInvalidMode, s)
		}
	}
	return m, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler using the digit form.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidMode, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Both digit and symbolic
// forms are accepted, so modes can be written either way in config files.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseModeString(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
