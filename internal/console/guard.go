package console

import "spacerh.dev/internal/session"

// View is the top level screen the console shows for a session state.
type View int

const (
	// ViewLoading blocks all routing until the session resolves.
	ViewLoading View = iota
	// ViewLogin is shown to anonymous visitors regardless of the
	// requested destination.
	ViewLogin
	// ViewShell is the authenticated application shell.
	ViewShell
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewLogin:
		return "login"
	case ViewShell:
		return "shell"
	default:
		return "unknown"
	}
}

// Resolve maps the session state to the view to render. Loading wins
// over everything so a restored session never flashes the login screen.
func Resolve(state session.State) View {
	if state.Loading {
		return ViewLoading
	}
	if !state.Authenticated {
		return ViewLogin
	}
	return ViewShell
}
