// Package guard decides whether protected views render, based on session
// state.
package guard

import "studycal/internal/session"

// Decision is what a protected view should do right now.
type Decision int

const (
	// Placeholder: session load has not completed; render something
	// neutral instead of flashing a redirect.
	Placeholder Decision = iota
	// Render: an identity is present, show the protected view.
	Render
	// RedirectToLogin: loading finished without an identity.
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case Placeholder:
		return "placeholder"
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect-to-login"
	default:
		return "unknown"
	}
}

// Evaluate maps a session snapshot to a Decision.
func Evaluate(st session.State) Decision {
	switch {
	case !st.Loaded:
		return Placeholder
	case st.Identity == nil:
		return RedirectToLogin
	default:
		return Render
	}
}

// Watch re-evaluates on every session change (initial load completing,
// login, logout) and reports the decision to onChange.
func Watch(store *session.Store, onChange func(Decision)) {
	store.Subscribe(func(st session.State) {
		onChange(Evaluate(st))
	})
	onChange(Evaluate(store.State()))
}
