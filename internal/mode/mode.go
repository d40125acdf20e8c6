// Package mode implements the app's dual content personality and the
// resolver that picks user-facing copy for the active mode.
package mode

// Mode is the app's content personality.
type Mode string

const (
	Faith         Mode = "faith"
	Encouragement Mode = "encouragement"
	// Both is the dual-mode setting: filters match everything, copy
	// resolution prefers the currently displayed personality.
	Both Mode = "both"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case Faith, Encouragement, Both:
		return true
	}
	return false
}

// Copy is a piece of user-facing text with optional per-mode overrides.
type Copy struct {
	Default       string
	Faith         string
	Encouragement string
}

// Resolve returns the variant of c for the active display mode. The matching
// override wins; a missing override falls back to the default text. Pure.
func Resolve(c Copy, active Mode) string {
	switch active {
	case Faith:
		if c.Faith != "" {
			return c.Faith
		}
	case Encouragement:
		if c.Encouragement != "" {
			return c.Encouragement
		}
	}
	return c.Default
}

// ResolveFor resolves c under a query filter mode. Dual-mode queries defer to
// the display personality toggle; single-mode queries use their own mode.
func ResolveFor(c Copy, filter, display Mode) string {
	if filter == Both {
		return Resolve(c, display)
	}
	return Resolve(c, filter)
}
