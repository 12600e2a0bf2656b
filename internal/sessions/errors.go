package sessions

import "fmt"

// Sentinels surfaced by the manager's authentication gate and login
// path. The command layer matches these with errors.Is to pick the
// message rendered to the user.
var (
	// ErrNotLoggedIn means no session exists in memory or on disk.
	ErrNotLoggedIn = fmt.Errorf("not logged in")

	// ErrSessionExpired means the platform rejected a previously valid
	// session; the stored copy has already been cleared.
	ErrSessionExpired = fmt.Errorf("session expired")

	// ErrInvalidCredentials means the platform rejected the supplied
	// username or password during login.
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
)

// ChallengeError is returned when the platform demands out-of-band
// verification during login. Guidance is shown to the user verbatim;
// the login is never retried automatically.
type ChallengeError struct {
	Guidance string
}

func (e *ChallengeError) Error() string {
	if len(e.Guidance) > 0 {
		return e.Guidance
	}
	return "verification challenge required"
}
