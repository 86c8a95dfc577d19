package store

import "testing"

func TestSessionKeysEnumeration(t *testing.T) {
	keys := SessionKeys()

	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			t.Fatalf("duplicate session key %q", key)
		}
		seen[key] = true
	}

	// Every field of the session record must be wiped; a key missing from
	// the enumeration would survive a wipe.
	required := []string{
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
	for _, key := range required {
		if !seen[key] {
			t.Errorf("session key %q missing from enumeration", key)
		}
	}
	if len(keys) != len(required) {
		t.Errorf("got %d session keys, want %d", len(keys), len(required))
	}
}
