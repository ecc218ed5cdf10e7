package domain

// Session is the resolved, in-memory view of the authenticated user. A nil
// *Session means nobody is signed in.
type Session struct {
	User UserRecord
}

// AuthView selects which authentication modal is open, if any.
type AuthView string

const (
	AuthViewNone     AuthView = ""
	AuthViewLogin    AuthView = "login"
	AuthViewRegister AuthView = "register"
)

func (v AuthView) String() string {
	if v == AuthViewNone {
		return "none"
	}
	return string(v)
}
