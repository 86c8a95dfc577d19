package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MauroHerreraJ/vigia/api"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		result api.LicenseResult
		want   Action
	}{
		{"Accepted", api.LicenseResult{Status: api.LicenseAccepted, Valid: true}, ActionAllow},
		{"Active", api.LicenseResult{Status: api.LicenseActive, Valid: true}, ActionAllow},
		{"Valid", api.LicenseResult{Status: api.LicenseValid, Valid: true}, ActionAllow},
		{"ValidFlagAlone", api.LicenseResult{Status: api.LicenseUnknown, Valid: true}, ActionAllow},
		{"Cancel", api.LicenseResult{Status: api.LicenseCancel}, ActionRevoke},
		{"Cancelled", api.LicenseResult{Status: api.LicenseCancelled}, ActionRevoke},
		{"Unauthorized", api.LicenseResult{Status: api.LicenseUnauthorized}, ActionRevoke},
		{"NotFound", api.LicenseResult{Status: api.LicenseNotFound}, ActionFailOpen},
		{"ConnectionError", api.LicenseResult{Status: api.LicenseConnectionError}, ActionFailOpen},
		{"ServerError", api.LicenseResult{Status: api.LicenseError}, ActionFailOpen},
		{"Unknown", api.LicenseResult{Status: api.LicenseUnknown}, ActionFailOpen},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.result), "status %s", tc.result.Status)
		})
	}
}
