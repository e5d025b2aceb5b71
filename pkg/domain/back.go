package domain

import (
	"fmt"
	"strings"
)

// BackBehavior controls what happens to a state when the user navigates
// backward past it.
type BackBehavior int

const (
	// Unapply calls the state's Unapply method. This is the default.
	Unapply BackBehavior = iota
	// Skip calls Unapply and then keeps going back past the state.
	Skip
	// SkipAndIgnore keeps going back past the state without calling Unapply.
	SkipAndIgnore
)

// Valid reports whether b is one of the declared behaviours.
func (b BackBehavior) Valid() bool {
	return b >= Unapply && b <= SkipAndIgnore
}

// ShouldUnapply reports whether Unapply must run when leaving the state backward.
func (b BackBehavior) ShouldUnapply() bool {
	switch b {
	case Unapply, Skip:
		return true
	default:
		return false
	}
}

// ShouldSkip reports whether the state is passed through when navigating backward.
func (b BackBehavior) ShouldSkip() bool {
	switch b {
	case Skip, SkipAndIgnore:
		return true
	default:
		return false
	}
}

func (b BackBehavior) String() string {
	switch b {
	case Unapply:
		return "unapply"
	case Skip:
		return "skip"
	case SkipAndIgnore:
		return "skip_and_ignore"
	default:
		return fmt.Sprintf("BackBehavior(%d)", int(b))
	}
}

// ParseBackBehavior converts the textual form used in flow files.
// An empty string yields Unapply.
func ParseBackBehavior(s string) (BackBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unapply":
		return Unapply, nil
	case "skip":
		return Skip, nil
	case "skip_and_ignore", "skip-and-ignore", "skipandignore":
		return SkipAndIgnore, nil
	default:
		return Unapply, fmt.Errorf("%w: %q", ErrUnknownBackBehavior, s)
	}
}
