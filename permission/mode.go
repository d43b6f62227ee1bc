package permission

// Mode is a three-bit owner/group/other permission value.
type Mode uint8

const (
	// ModeNone grants nothing.
	ModeNone Mode = 0
	// ModeOther grants access to every requester.
	ModeOther Mode = 1 << 0
	// ModeGroup grants access to members of the configured group.
	ModeGroup Mode = 1 << 1
	// ModeOwner grants access to the configured owner.
	ModeOwner Mode = 1 << 2
	// ModeAll sets all three bits.
	ModeAll = ModeOwner | ModeGroup | ModeOther

	modeMask = ModeAll
)

// Bit positions, least significant first.
const (
	BitOther = iota
	BitGroup
	BitOwner
	bitCount
)

// Has reports whether the bit at position bit is set.
func (m Mode) Has(bit int) bool {
	if bit < 0 || bit >= bitCount {
		return false
	}
	return m&(1<<bit) != 0
}

// Set returns m with the bit at position bit set.
func (m Mode) Set(bit int) Mode {
	if bit < 0 || bit >= bitCount {
		return m
	}
	return m | (1 << bit)
}

// Clear returns m with the bit at position bit cleared.
func (m Mode) Clear(bit int) Mode {
	if bit < 0 || bit >= bitCount {
		return m
	}
	return m &^ (1 << bit)
}

func (m Mode) Owner() bool { return m&ModeOwner != 0 }
func (m Mode) Group() bool { return m&ModeGroup != 0 }
func (m Mode) Other() bool { return m&ModeOther != 0 }

// Valid reports whether only the three permission bits are used.
func (m Mode) Valid() bool {
	return m&^modeMask == 0
}

// String renders the mode as three binary digits, e.g. "110".
func (m Mode) String() string {
	if !m.Valid() {
		return "invalid"
	}
	b := [3]byte{'0', '0', '0'}
	if m.Owner() {
		b[0] = '1'
	}
	if m.Group() {
		b[1] = '1'
	}
	if m.Other() {
		b[2] = '1'
	}
	return string(b[:])
}

// Symbolic renders the mode as "ugo" letters with '-' for unset bits,
// e.g. "ug-".
func (m Mode) Symbolic() string {
	if !m.Valid() {
		return "invalid"
	}
	b := [3]byte{'-', '-', '-'}
	if m.Owner() {
		b[0] = 'u'
	}
	if m.Group() {
		b[1] = 'g'
	}
	if m.Other() {
		b[2] = 'o'
	}
	return string(b[:])
}

// Digits returns the decimal-digit literal for the mode, so that
// ParseMode(m.Digits()) == m. For example 0b110 -> 110.
func (m Mode) Digits() int {
	out := 0
	if m.Owner() {
		out += 100
	}
	if m.Group() {
		out += 10
	}
	if m.Other() {
		out++
	}
	return out
}
