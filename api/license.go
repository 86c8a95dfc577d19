package api

import (
	"net/http"
	"strings"
)

// normalizeLicenseStatus folds the raw server status string into the closed
// set the session policy understands. Unrecognized strings become
// LicenseUnknown rather than an error.
func normalizeLicenseStatus(raw string) LicenseResult {
	switch LicenseStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case LicenseAccepted:
		return LicenseResult{Status: LicenseAccepted, Valid: true}
	case LicenseActive:
		return LicenseResult{Status: LicenseActive, Valid: true}
	case LicenseValid:
		return LicenseResult{Status: LicenseValid, Valid: true}
	case LicenseCancel:
		return LicenseResult{Status: LicenseCancel}
	case LicenseCancelled:
		return LicenseResult{Status: LicenseCancelled}
	case LicenseNotFound:
		return LicenseResult{Status: LicenseNotFound}
	case LicenseUnauthorized:
		return LicenseResult{Status: LicenseUnauthorized}
	default:
		return LicenseResult{Status: LicenseUnknown}
	}
}

// licenseResultFromError maps a failed license lookup onto the result set.
// Only an explicit 404 becomes not_found; everything else degrades to the
// broadest category that still lets policy distinguish reachability.
func licenseResultFromError(err error) LicenseResult {
	switch {
	case IsUnreachable(err):
		return LicenseResult{Status: LicenseConnectionError}
	case StatusCode(err) == http.StatusNotFound:
		return LicenseResult{Status: LicenseNotFound}
	case StatusCode(err) == http.StatusUnauthorized, StatusCode(err) == http.StatusForbidden:
		return LicenseResult{Status: LicenseUnauthorized}
	default:
		return LicenseResult{Status: LicenseError}
	}
}
