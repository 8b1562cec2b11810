package slots

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxSlot is the highest slot number accepted by ParseSlot.
	MaxSlot = 999

	keyPrefix = "num-"
)

// Slot is a canonical three-digit slot identifier such as "007".
type Slot string

// ParseSlot canonicalizes user input into a Slot. "7", "07" and "007" all map
// to "007". Input that is not a base-10 integer in [0, MaxSlot] is rejected.
func ParseSlot(input string) (Slot, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidSlot)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidSlot, input)
	}
	return FromInt(n)
}

// FromInt returns the Slot for n, zero-padded to three digits.
func FromInt(n int) (Slot, error) {
	if n < 0 || n > MaxSlot {
		return "", fmt.Errorf("%w: %d outside 000-%03d", ErrInvalidSlot, n, MaxSlot)
	}
	return Slot(fmt.Sprintf("%03d", n)), nil
}

// Valid reports whether s is in canonical form.
func (s Slot) Valid() bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Key is the namespaced form stored in the document ("num-007").
func (s Slot) Key() string { return keyPrefix + string(s) }

func (s Slot) String() string { return string(s) }

// slotFromKey strips the namespace tag from a stored key.
func slotFromKey(key string) Slot { return Slot(strings.TrimPrefix(key, keyPrefix)) }

// State is the two-valued occupancy of a slot.
type State int

const (
	Available State = iota
	Occupied
)

// String returns a human-readable name for the state.
func (st State) String() string {
	switch st {
	case Occupied:
		return "occupied"
	case Available:
		return "available"
	default:
		return "unknown"
	}
}
