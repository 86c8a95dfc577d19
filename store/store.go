// Package store provides the local key-value store that persists the session record.
package store

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers treat it the same as an absent value.
var ErrUnavailable = errors.New("store unavailable")

// Session record keys. The record is flat: each field is an independent
// key-value entry, and absence of a key is always a valid state.
const (
	KeyAccountNumber     = "accountNumber"
	KeyNeighborhoodCode  = "neighborhoodCode"
	KeyAccessToken       = "accessToken"
	KeyRefreshToken      = "refreshToken"
	KeyLicenseCode       = "licenseCode"
	KeyNeighborhoodName  = "neighborhoodName"
	KeyLogoURL           = "logoUrl"
	KeyPrimaryColor      = "primaryColor"
	KeyButtonColor       = "buttonColor"
	KeyBackgroundColor   = "backgroundColor"
	KeyFullName          = "fullName"
	KeyPropertyReference = "propertyReference"
	KeyPhoneNumber       = "phoneNumber"
	KeyNeighborhoodPhone = "neighborhoodPhoneNumber"
)

// SessionKeys returns every key belonging to the session record. A wipe must
// remove all of them; anything not listed here survives a wipe.
func SessionKeys() []string {
	return []string{
		KeyAccountNumber,
		KeyNeighborhoodCode,
		KeyAccessToken,
		KeyRefreshToken,
		KeyLicenseCode,
		KeyNeighborhoodName,
		KeyLogoURL,
		KeyPrimaryColor,
		KeyButtonColor,
		KeyBackgroundColor,
		KeyFullName,
		KeyPropertyReference,
		KeyPhoneNumber,
		KeyNeighborhoodPhone,
	}
}

// Store defines the interface for session record persistence.
//
// Get reports absence through its bool result, not through an error: a missing
// key is a normal outcome, and concurrent removal must never crash a reader.
// RemoveMany removes the given keys in a single batch where the backend
// supports it; on batch failure the caller retries key-by-key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
}
