package api

import "time"

// Neighborhood is the community configuration served to registered devices:
// presentation branding plus the SMS fallback contact number.
type Neighborhood struct {
	Name            string `json:"name"`
	LogoURL         string `json:"logoUrl"`
	PrimaryColor    string `json:"primaryColor"`
	ButtonColor     string `json:"buttonColor"`
	BackgroundColor string `json:"backgroundColor"`
	SMSPhoneNumber  string `json:"smsPhoneNumber"`
}

// AccountCheck is the availability verdict for an account number within a
// neighborhood. Exists and Available are independent: an existing account may
// already be bound to another device.
type AccountCheck struct {
	Exists    bool `json:"exists"`
	Available bool `json:"available"`
}

// RegisterRequest is the registration submission.
type RegisterRequest struct {
	NeighborhoodCode  string `json:"neighborhoodCode"`
	AccountNumber     string `json:"accountNumber"`
	FullName          string `json:"fullName"`
	PropertyReference string `json:"propertyReference"`
	PhoneNumber       string `json:"phoneNumber"`
}

// Registration carries the credentials and configuration issued by a
// successful registration. LicenseCode may be empty on installations that
// predate license tracking.
type Registration struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	LicenseCode  string       `json:"licenseCode"`
	Neighborhood Neighborhood `json:"neighborhood"`
}

// LicenseStatus is the normalized license state. The server vocabulary is
// folded to lowercase; everything unrecognized becomes LicenseUnknown.
type LicenseStatus string

const (
	LicenseAccepted        LicenseStatus = "accepted"
	LicenseActive          LicenseStatus = "active"
	LicenseValid           LicenseStatus = "valid"
	LicenseCancel          LicenseStatus = "cancel"
	LicenseCancelled       LicenseStatus = "cancelled"
	LicenseNotFound        LicenseStatus = "not_found"
	LicenseUnauthorized    LicenseStatus = "unauthorized"
	LicenseConnectionError LicenseStatus = "connection_error"
	LicenseError           LicenseStatus = "error"
	LicenseUnknown         LicenseStatus = "unknown"
)

// LicenseResult is the outcome of a license check. Valid is only set when the
// server positively confirmed the license; it is never inferred.
type LicenseResult struct {
	Status LicenseStatus
	Valid  bool
}

// Cancelled reports whether the server positively confirmed a cancellation.
// Only this outcome is enforced eagerly by the session policy.
func (r LicenseResult) Cancelled() bool {
	return r.Status == LicenseCancel || r.Status == LicenseCancelled
}

// PanicEvent is a panic activation. The ID is assigned by the client so a
// resend after an ambiguous failure is idempotent on the server side.
type PanicEvent struct {
	ID        string    `json:"id"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame renders the legacy wire frame consumed by the receiving alarm
// equipment. Account zero is the protocol's null account.
func Frame(accountNumber string) string {
	if accountNumber == "" {
		accountNumber = "0"
	}
	return "EVT;" + accountNumber + ";107;0"
}
