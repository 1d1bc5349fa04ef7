package wake

import (
	"fmt"
	"strings"
)

// MaxNameLength is systemd's 255 byte unit name limit minus the longest
// suffix derived from a TimerName (".service").
const MaxNameLength = 255 - len(".service")

// TimerName is a validated systemd unit name used as the handle of a
// scheduled job. The zero value is not valid; use NewTimerName.
type TimerName struct {
	name string
}

// unitTypes are the suffixes systemd-run treats as part of --unit. A name
// ending in one of them would be mangled (beep.service -> beep.timer) and no
// longer match Timer().
var unitTypes = []string{
	"service", "timer", "socket", "target", "path", "mount",
	"automount", "swap", "slice", "scope", "device",
}

// NewTimerName checks raw against the unit name grammar: non-empty, at most
// MaxNameLength bytes, only ASCII letters, digits, '-', '_' and '.', and not
// ending in a unit type suffix such as ".service".
func NewTimerName(raw string) (TimerName, error) {
	if raw == "" {
		return TimerName{}, &NameError{Name: raw, Reason: "must not be empty"}
	}
	if len(raw) > MaxNameLength {
		return TimerName{}, &NameError{Name: raw, Reason: fmt.Sprintf("longer than %d bytes", MaxNameLength)}
	}
	for i := 0; i < len(raw); i++ {
		if !nameByte(raw[i]) {
			return TimerName{}, &NameError{Name: raw, Reason: fmt.Sprintf("illegal character %q at offset %d", rune(raw[i]), i)}
		}
	}
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		suffix := raw[i+1:]
		for _, t := range unitTypes {
			if suffix == t {
				return TimerName{}, &NameError{Name: raw, Reason: fmt.Sprintf("must not end in unit type suffix %q", "."+t)}
			}
		}
	}
	return TimerName{name: raw}, nil
}

// MustTimerName is like NewTimerName but panics on error.
func MustTimerName(raw string) TimerName {
	n, err := NewTimerName(raw)
	if err != nil {
		panic(err)
	}
	return n
}

func nameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '.':
		return true
	}
	return false
}

func (n TimerName) String() string { return n.name }

// IsZero reports whether n was not built by NewTimerName.
func (n TimerName) IsZero() bool { return n.name == "" }

// Timer is the timer unit systemd-run creates for this name.
func (n TimerName) Timer() string { return n.name + ".timer" }

// Service is the service unit the timer activates.
func (n TimerName) Service() string { return n.name + ".service" }
