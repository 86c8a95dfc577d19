package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/session"
)

func (c *Control) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.ctrl.Snapshot())
}

// ValidateRequest is step one of registration: neighborhood plus account.
type ValidateRequest struct {
	NeighborhoodCode string `json:"neighborhoodCode"`
	AccountNumber    string `json:"accountNumber"`
}

// ValidateResponse carries the availability verdict and the neighborhood
// branding so the next screen can already paint.
type ValidateResponse struct {
	Exists       bool              `json:"exists"`
	Available    bool              `json:"available"`
	Neighborhood *api.Neighborhood `json:"neighborhood,omitempty"`
}

func (c *Control) validateRegistration(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.NeighborhoodCode) == "" || strings.TrimSpace(req.AccountNumber) == "" {
		writeError(w, http.StatusBadRequest, "Enter both the neighborhood code and the account number.")
		return
	}

	check, err := c.client.ValidateAccountNumber(r.Context(), req.NeighborhoodCode, req.AccountNumber)
	if err != nil {
		mapAPIError(w, err)
		return
	}
	resp := ValidateResponse{Exists: check.Exists, Available: check.Available}

	// Branding fetch is best effort; validation stands on its own.
	if n, err := c.client.NeighborhoodConfig(r.Context(), req.NeighborhoodCode); err == nil {
		resp.Neighborhood = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// RegisterRequest is step two: the personal data submission. The property
// reference may be given directly or composed from block and lot.
type RegisterRequest struct {
	NeighborhoodCode  string `json:"neighborhoodCode"`
	AccountNumber     string `json:"accountNumber"`
	FullName          string `json:"fullName"`
	PropertyReference string `json:"propertyReference"`
	Block             string `json:"block"`
	Lot               string `json:"lot"`
	PhoneNumber       string `json:"phoneNumber"`
}

func (c *Control) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.NeighborhoodCode) == "" || strings.TrimSpace(req.AccountNumber) == "" {
		writeError(w, http.StatusBadRequest, "Neighborhood information is missing. Restart the registration process.")
		return
	}

	ref := strings.TrimSpace(req.PropertyReference)
	if ref == "" && (strings.TrimSpace(req.Block) != "" || strings.TrimSpace(req.Lot) != "") {
		ref = fmt.Sprintf("Manzana %s - Lote %s", strings.TrimSpace(req.Block), strings.TrimSpace(req.Lot))
	}

	apiReq := api.RegisterRequest{
		NeighborhoodCode:  req.NeighborhoodCode,
		AccountNumber:     req.AccountNumber,
		FullName:          strings.TrimSpace(req.FullName),
		PropertyReference: ref,
		PhoneNumber:       strings.TrimSpace(req.PhoneNumber),
	}

	reg, err := c.client.Register(r.Context(), apiReq)
	if err != nil {
		mapAPIError(w, err)
		return
	}
	if err := c.ctrl.CompleteRegistration(r.Context(), apiReq, reg); err != nil {
		c.log.Error().Err(err).Msg("persisting registration failed")
		writeError(w, http.StatusInternalServerError,
			"Registration succeeded but could not be saved on the device. Try again.")
		return
	}
	writeJSON(w, http.StatusCreated, c.ctrl.Snapshot())
}

func (c *Control) panicPress(w http.ResponseWriter, r *http.Request) {
	if c.ctrl.Snapshot().State != session.StateAuthorized {
		writeError(w, http.StatusForbidden, "The device is not configured. Complete registration first.")
		return
	}
	c.hold.Press()
	w.WriteHeader(http.StatusAccepted)
}

func (c *Control) panicRelease(w http.ResponseWriter, r *http.Request) {
	c.hold.Release()
	w.WriteHeader(http.StatusAccepted)
}

// WipeRequest gates the maintenance wipe behind the operator passcode.
type WipeRequest struct {
	Passcode string `json:"passcode"`
}

func (c *Control) wipe(w http.ResponseWriter, r *http.Request) {
	var req WipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.wipeGuard == nil || !c.wipeGuard(req.Passcode) {
		writeError(w, http.StatusForbidden, "Incorrect passcode.")
		return
	}
	c.ctrl.Wipe(r.Context())
	c.log.Info().Msg("session wiped by maintenance request")
	writeJSON(w, http.StatusOK, c.ctrl.Snapshot())
}
