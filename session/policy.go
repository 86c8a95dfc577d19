package session

import "github.com/MauroHerreraJ/vigia/api"

// Action is what the controller does with a license check result.
type Action int

const (
	// ActionAllow grants or keeps access on a server-confirmed valid license.
	ActionAllow Action = iota
	// ActionFailOpen grants or keeps access even though the server did not
	// confirm validity. Cancellation is the only event enforced eagerly;
	// transient connectivity must not lock out a paying user, and the next
	// periodic check re-evaluates.
	ActionFailOpen
	// ActionRevoke wipes the session record and drops to unauthorized.
	ActionRevoke
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionFailOpen:
		return "fail_open"
	case ActionRevoke:
		return "revoke"
	default:
		return "invalid"
	}
}

// Decide maps a license check result onto a controller action. The table is
// the single place where the fail-open/fail-closed policy lives:
//
//	cancel, cancelled      revoke (fail-closed, billing enforcement)
//	unauthorized           revoke (bearer rejected with 401/403)
//	accepted/active/valid  allow
//	not_found              fail open (read may be eventually consistent)
//	connection_error       fail open
//	error, unknown         fail open
func Decide(res api.LicenseResult) Action {
	switch {
	case res.Cancelled():
		return ActionRevoke
	case res.Status == api.LicenseUnauthorized:
		return ActionRevoke
	case res.Valid:
		return ActionAllow
	default:
		return ActionFailOpen
	}
}
