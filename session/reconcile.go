package session

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/store"
)

// loadCachedBranding reads the last-known-good branding so the UI can paint
// before the server is consulted.
func (c *Controller) loadCachedBranding(ctx context.Context) Branding {
	return Branding{
		Name:            c.read(ctx, store.KeyNeighborhoodName),
		LogoURL:         c.read(ctx, store.KeyLogoURL),
		PrimaryColor:    c.read(ctx, store.KeyPrimaryColor),
		ButtonColor:     c.read(ctx, store.KeyButtonColor),
		BackgroundColor: c.read(ctx, store.KeyBackgroundColor),
	}
}

// reconcile refreshes the cached configuration from the server. Failure is
// non-fatal and never surfaced to the user: cached values stay authoritative
// until the next successful fetch.
func (c *Controller) reconcile(ctx context.Context) {
	code := c.Snapshot().NeighborhoodCode
	if code == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := c.backend.NeighborhoodConfig(ctx, code)
	if err != nil {
		c.log.Debug().Err(err).Msg("neighborhood config refresh failed, keeping cache")
		return
	}
	c.applyNeighborhood(ctx, n)
}

// applyNeighborhood overwrites each cached field individually, and only when
// the server provided a non-empty value for that specific field. A partial
// response must not blank previously known-good values. The contact phone is
// stricter still: only a non-empty trimmed value replaces the cached one, and
// absence is not an error.
func (c *Controller) applyNeighborhood(ctx context.Context, n *api.Neighborhood) {
	c.recordMu.Lock()
	defer c.recordMu.Unlock()
	if ctx.Err() != nil {
		// A teardown raced the refresh; the wiped record must stay gone.
		return
	}

	fields := map[string]string{
		store.KeyNeighborhoodName:  n.Name,
		store.KeyLogoURL:           n.LogoURL,
		store.KeyPrimaryColor:      n.PrimaryColor,
		store.KeyButtonColor:       n.ButtonColor,
		store.KeyBackgroundColor:   n.BackgroundColor,
		store.KeyNeighborhoodPhone: strings.TrimSpace(n.SMSPhoneNumber),
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := c.st.Set(ctx, key, value); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("branding cache write failed")
		}
	}

	c.mu.Lock()
	c.snap.Branding = mergeBranding(c.snap.Branding, fields)
	if phone := fields[store.KeyNeighborhoodPhone]; phone != "" {
		c.snap.ContactPhone = phone
	}
	c.mu.Unlock()
	c.notify()
}

func mergeBranding(current Branding, fields map[string]string) Branding {
	if v := fields[store.KeyNeighborhoodName]; v != "" {
		current.Name = v
	}
	if v := fields[store.KeyLogoURL]; v != "" {
		current.LogoURL = v
	}
	if v := fields[store.KeyPrimaryColor]; v != "" {
		current.PrimaryColor = v
	}
	if v := fields[store.KeyButtonColor]; v != "" {
		current.ButtonColor = v
	}
	if v := fields[store.KeyBackgroundColor]; v != "" {
		current.BackgroundColor = v
	}
	return current
}

// normalizeName canonicalizes user-entered names (NFC) and trims whitespace
// before they are persisted or sent to the server.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
