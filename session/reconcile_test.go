package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/store"
	"github.com/MauroHerreraJ/vigia/store/memory"
)

func TestApplyNeighborhoodKeepsKnownGoodValues(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedRecord(t, st)
	require.NoError(t, st.Set(ctx, store.KeyLogoURL, "https://cdn/old-logo.png"))
	require.NoError(t, st.Set(ctx, store.KeyNeighborhoodPhone, "3512260271"))

	backend := &fakeBackend{license: api.LicenseResult{Status: api.LicenseAccepted, Valid: true}}
	c := New(st, backend)
	defer c.Stop()
	_, err := c.Start(ctx)
	require.NoError(t, err)

	// Partial response: only the primary color is provided.
	c.applyNeighborhood(ctx, &api.Neighborhood{PrimaryColor: "#123456"})

	snap := c.Snapshot()
	assert.Equal(t, "#123456", snap.Branding.PrimaryColor)
	assert.Equal(t, "https://cdn/old-logo.png", snap.Branding.LogoURL)
	assert.Equal(t, "La Rufina", snap.Branding.Name)
	assert.Equal(t, "3512260271", snap.ContactPhone)

	logo, ok, err := st.Get(ctx, store.KeyLogoURL)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/old-logo.png", logo)
}

func TestApplyNeighborhoodPhoneTrimRule(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedRecord(t, st)
	require.NoError(t, st.Set(ctx, store.KeyNeighborhoodPhone, "3512260271"))

	backend := &fakeBackend{license: api.LicenseResult{Status: api.LicenseAccepted, Valid: true}}
	c := New(st, backend)
	defer c.Stop()
	_, err := c.Start(ctx)
	require.NoError(t, err)

	// Whitespace-only phone must not displace the cached value.
	c.applyNeighborhood(ctx, &api.Neighborhood{SMSPhoneNumber: "   "})
	assert.Equal(t, "3512260271", c.Snapshot().ContactPhone)

	phone, ok, err := st.Get(ctx, store.KeyNeighborhoodPhone)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3512260271", phone)

	// A real value, padded, replaces it trimmed.
	c.applyNeighborhood(ctx, &api.Neighborhood{SMSPhoneNumber: " 3519998877 "})
	assert.Equal(t, "3519998877", c.Snapshot().ContactPhone)
}

func TestReconcileRefreshesFromServer(t *testing.T) {
	st := memory.New()
	seedRecord(t, st)
	backend := &fakeBackend{
		license: api.LicenseResult{Status: api.LicenseAccepted, Valid: true},
		config: &api.Neighborhood{
			Name:           "La Rufina Norte",
			LogoURL:        "https://cdn/new-logo.png",
			SMSPhoneNumber: "3510001122",
		},
	}

	c := New(st, backend)
	defer c.Stop()
	_, err := c.Start(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.Branding.Name == "La Rufina Norte" &&
			snap.Branding.LogoURL == "https://cdn/new-logo.png" &&
			snap.ContactPhone == "3510001122"
	}, 2*time.Second, 10*time.Millisecond, "reconciliation never landed")

	// Fields the server left empty keep their cached values.
	assert.Equal(t, "#38a654", c.Snapshot().Branding.PrimaryColor)
}

func TestReconcileFailureKeepsCache(t *testing.T) {
	st := memory.New()
	seedRecord(t, st)
	// fakeBackend without config behaves as unreachable.
	backend := &fakeBackend{license: api.LicenseResult{Status: api.LicenseAccepted, Valid: true}}

	c := New(st, backend)
	defer c.Stop()
	_, err := c.Start(context.Background())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	snap := c.Snapshot()
	assert.Equal(t, StateAuthorized, snap.State)
	assert.Equal(t, "La Rufina", snap.Branding.Name)
}

func TestWipeDuringReconcileKeepsRecordAbsent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedRecord(t, st)

	gate := make(chan struct{})
	backend := &fakeBackend{
		license:    api.LicenseResult{Status: api.LicenseActive, Valid: true},
		config:     &api.Neighborhood{Name: "La Rufina Norte", SMSPhoneNumber: "3510001122"},
		configGate: gate,
	}
	c := New(st, backend)
	defer c.Stop()
	_, err := c.Start(ctx)
	require.NoError(t, err)

	// The configuration refresh is still in flight when the wipe lands.
	c.Wipe(ctx)
	requireRecordAbsent(t, st)

	// Release the fetch; its result must be discarded, not written back.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	requireRecordAbsent(t, st)
	snap := c.Snapshot()
	assert.Equal(t, StateUnauthorized, snap.State)
	assert.Empty(t, snap.Branding.Name)
	assert.Empty(t, snap.ContactPhone)
}

func TestCompleteRegistrationRetainsCachedPhone(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	// A previously cached contact phone from an earlier installation.
	require.NoError(t, st.Set(ctx, store.KeyNeighborhoodPhone, "3512260271"))

	backend := &fakeBackend{}
	c := New(st, backend)
	defer c.Stop()

	req := api.RegisterRequest{
		NeighborhoodCode:  "rufina",
		AccountNumber:     "55",
		FullName:          "  Juan Pérez ",
		PropertyReference: "Manzana 5 - Lote 12",
		PhoneNumber:       "+5493515551234",
	}
	reg := &api.Registration{
		AccessToken:  "at",
		RefreshToken: "rt",
		LicenseCode:  "lic-1",
		// Registration response carries no sms number.
		Neighborhood: api.Neighborhood{Name: "La Rufina"},
	}
	require.NoError(t, c.CompleteRegistration(ctx, req, reg))

	snap := c.Snapshot()
	assert.Equal(t, StateAuthorized, snap.State)
	assert.Equal(t, "55", snap.AccountNumber)
	assert.Equal(t, "Juan Pérez", snap.FullName)
	assert.Equal(t, "3512260271", snap.ContactPhone, "cached phone must survive an empty response value")

	phone, ok, err := st.Get(ctx, store.KeyNeighborhoodPhone)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3512260271", phone)

	token, ok := c.AccessToken()
	require.True(t, ok)
	assert.Equal(t, "at", token)
	assert.True(t, c.recheckArmed())
}
