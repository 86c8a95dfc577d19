package session

// State is the authorization state of the device.
type State int

const (
	// StateUninitialized means Start has not been called yet.
	StateUninitialized State = iota
	// StateChecking means the startup authorization check is in flight.
	StateChecking
	// StateAuthorized means the device holds a full session record and the
	// license was not confirmed cancelled.
	StateAuthorized
	// StateUnauthorized means no usable session record exists.
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler so states serialize as their
// names on the control surface.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Branding is the cached community presentation configuration. Values are
// last-known-good: they may be stale relative to the server but are never
// blanked by a partial server response.
type Branding struct {
	Name            string `json:"name"`
	LogoURL         string `json:"logoUrl"`
	PrimaryColor    string `json:"primaryColor"`
	ButtonColor     string `json:"buttonColor"`
	BackgroundColor string `json:"backgroundColor"`
}

// Snapshot is the controller state published to subscribers. It carries
// everything the presentation layer needs to render without touching the
// store directly.
type Snapshot struct {
	State             State    `json:"state"`
	AccountNumber     string   `json:"accountNumber,omitempty"`
	NeighborhoodCode  string   `json:"neighborhoodCode,omitempty"`
	Branding          Branding `json:"branding"`
	ContactPhone      string   `json:"contactPhone,omitempty"`
	FullName          string   `json:"fullName,omitempty"`
	PropertyReference string   `json:"propertyReference,omitempty"`
	// RevokeReason is set when the state dropped to unauthorized because of
	// a confirmed license cancellation or an explicit wipe.
	RevokeReason string `json:"revokeReason,omitempty"`
}
