// Package session implements the session lifecycle controller: the single
// authority over whether the device is authorized, over the cached session
// record, and over tearing everything down when the license is revoked.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/store"
)

const (
	// DefaultRecheckInterval is how often an authorized device re-validates
	// its license against the server.
	DefaultRecheckInterval = 5 * time.Minute

	// RevokeReasonCancelled marks a teardown triggered by a confirmed
	// license cancellation.
	RevokeReasonCancelled = "licence_cancelled"
	// RevokeReasonUserWipe marks a teardown requested by the user.
	RevokeReasonUserWipe = "user_wipe"
)

// Backend is the slice of the remote API the controller needs.
type Backend interface {
	NeighborhoodConfig(ctx context.Context, code string) (*api.Neighborhood, error)
	CheckLicense(ctx context.Context, licenseCode, accessToken string) api.LicenseResult
}

// Controller owns the session record. All reads and writes of session keys go
// through it; other components subscribe to snapshots instead of touching the
// store.
type Controller struct {
	st       store.Store
	backend  Backend
	log      zerolog.Logger
	interval time.Duration

	// allowLegacy authorizes records that carry an access token but no
	// license code. Older registrations predate license tracking.
	allowLegacy bool

	cron    *cron.Cron
	entryMu sync.Mutex
	entryID cron.EntryID

	// recordMu serializes store writes against teardown, so a background
	// refresh can never repopulate keys a wipe just removed.
	recordMu        sync.Mutex
	reconcileCancel context.CancelFunc

	mu    sync.Mutex
	snap  Snapshot
	subs  map[int]chan Snapshot
	nextS int
	token *memguard.Enclave
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRecheckInterval sets the periodic license re-check interval.
// Sub-second intervals are rounded up to one second by the scheduler.
func WithRecheckInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLegacyAccess permits authorization for records that have an access
// token but no license code.
func WithLegacyAccess(allow bool) Option {
	return func(c *Controller) { c.allowLegacy = allow }
}

// New creates a Controller. Start must be called before any other method.
func New(st store.Store, backend Backend, opts ...Option) *Controller {
	c := &Controller{
		st:       st,
		backend:  backend,
		log:      zerolog.Nop(),
		interval: DefaultRecheckInterval,
		cron:     cron.New(),
		subs:     make(map[int]chan Snapshot),
		snap:     Snapshot{State: StateUninitialized},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the startup authorization check and resolves to Authorized or
// Unauthorized before returning. The presentation layer must not render any
// authorized-only screen until this returns; the periodic re-check is only
// scheduled after this barrier.
func (c *Controller) Start(ctx context.Context) (State, error) {
	c.setState(StateChecking, "")

	licenseCode := c.read(ctx, store.KeyLicenseCode)
	if licenseCode == "" {
		if c.allowLegacy && c.read(ctx, store.KeyAccessToken) != "" {
			c.log.Info().Msg("no licence code, legacy access token accepted")
			c.authorize(ctx, "")
			return StateAuthorized, nil
		}
		// Nothing to verify and no network call to make.
		c.setState(StateUnauthorized, "")
		return StateUnauthorized, nil
	}

	token := c.read(ctx, store.KeyAccessToken)
	if token == "" {
		// A licence code without credentials is a partial record; wiping
		// restores the all-or-nothing invariant.
		c.log.Warn().Msg("licence code present but access token missing, clearing partial record")
		c.teardown(ctx, "")
		return StateUnauthorized, nil
	}

	res := c.backend.CheckLicense(ctx, licenseCode, token)
	action := Decide(res)
	c.log.Info().
		Str("status", string(res.Status)).
		Str("action", action.String()).
		Msg("startup licence check")

	if action == ActionRevoke {
		c.teardown(ctx, RevokeReasonCancelled)
		return StateUnauthorized, nil
	}
	c.authorize(ctx, licenseCode)
	return StateAuthorized, nil
}

// Stop cancels the periodic re-check and releases subscriber channels. Safe
// to call regardless of state.
func (c *Controller) Stop() {
	c.stopRecheck()
	c.cron.Stop()
	c.recordMu.Lock()
	if c.reconcileCancel != nil {
		c.reconcileCancel()
		c.reconcileCancel = nil
	}
	c.recordMu.Unlock()
}

// Snapshot returns the current published state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe returns a channel of state snapshots and a cancel function.
// The current snapshot is delivered immediately. Slow consumers miss
// intermediate snapshots rather than block the controller.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)
	c.mu.Lock()
	id := c.nextS
	c.nextS++
	c.subs[id] = ch
	ch <- c.snap
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// AccessToken returns the bearer token of the authorized session. The token
// lives in a sealed enclave between uses; it is never re-read from the store
// after authorization.
func (c *Controller) AccessToken() (string, bool) {
	c.mu.Lock()
	enclave := c.token
	c.mu.Unlock()
	if enclave == nil {
		return "", false
	}
	buf, err := enclave.Open()
	if err != nil {
		c.log.Error().Err(err).Msg("opening access token enclave")
		return "", false
	}
	token := string(buf.Bytes())
	buf.Destroy()
	return token, true
}

// CompleteRegistration persists the credentials and configuration issued by a
// successful registration and transitions to Authorized. Branding and contact
// phone follow the last-known-good retention rules, so a registration response
// with empty fields never blanks previously cached values.
func (c *Controller) CompleteRegistration(ctx context.Context, req api.RegisterRequest, reg *api.Registration) error {
	writes := map[string]string{
		store.KeyNeighborhoodCode: req.NeighborhoodCode,
		store.KeyAccountNumber:    req.AccountNumber,
		store.KeyAccessToken:      reg.AccessToken,
		store.KeyRefreshToken:     reg.RefreshToken,
	}
	if reg.LicenseCode != "" {
		writes[store.KeyLicenseCode] = reg.LicenseCode
	}
	if name := normalizeName(req.FullName); name != "" {
		writes[store.KeyFullName] = name
	}
	if ref := strings.TrimSpace(req.PropertyReference); ref != "" {
		writes[store.KeyPropertyReference] = ref
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		writes[store.KeyPhoneNumber] = phone
	}
	for key, value := range writes {
		if err := c.st.Set(ctx, key, value); err != nil {
			return err
		}
	}
	c.applyNeighborhood(ctx, &reg.Neighborhood)
	c.authorize(ctx, reg.LicenseCode)
	return nil
}

// Wipe removes the whole session record on explicit user request and drops to
// Unauthorized. Idempotent.
func (c *Controller) Wipe(ctx context.Context) {
	c.teardown(ctx, RevokeReasonUserWipe)
}

// CheckNow runs one license re-check immediately, using the same decision
// table as the periodic timer. It is a no-op unless currently authorized.
func (c *Controller) CheckNow(ctx context.Context) {
	if c.Snapshot().State != StateAuthorized {
		return
	}
	licenseCode := c.read(ctx, store.KeyLicenseCode)
	if licenseCode == "" {
		return
	}
	res := c.backend.CheckLicense(ctx, licenseCode, c.read(ctx, store.KeyAccessToken))
	action := Decide(res)
	c.log.Debug().
		Str("status", string(res.Status)).
		Str("action", action.String()).
		Msg("periodic licence check")

	if action == ActionRevoke {
		// Stop the timer before publishing the revocation so a second tick
		// cannot re-fire the wipe while the user acknowledges the alert.
		c.teardown(ctx, RevokeReasonCancelled)
	}
}

// authorize loads the cached record into the snapshot, seals the access
// token, publishes Authorized and arms the periodic re-check. Reconciliation
// against the server runs in the background and is non-fatal.
func (c *Controller) authorize(ctx context.Context, licenseCode string) {
	snap := Snapshot{
		State:             StateAuthorized,
		AccountNumber:     c.read(ctx, store.KeyAccountNumber),
		NeighborhoodCode:  c.read(ctx, store.KeyNeighborhoodCode),
		ContactPhone:      c.read(ctx, store.KeyNeighborhoodPhone),
		FullName:          c.read(ctx, store.KeyFullName),
		PropertyReference: c.read(ctx, store.KeyPropertyReference),
		Branding:          c.loadCachedBranding(ctx),
	}

	token := c.read(ctx, store.KeyAccessToken)

	c.mu.Lock()
	if token != "" {
		c.token = memguard.NewEnclave([]byte(token))
	}
	c.snap = snap
	c.mu.Unlock()
	c.notify()

	if licenseCode != "" {
		c.startRecheck()
	}

	// The refresh goroutine outlives the caller's request but not a teardown.
	c.recordMu.Lock()
	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.reconcileCancel = cancel
	c.recordMu.Unlock()
	go c.reconcile(rctx)
}

// teardown wipes the session record, stops the re-check timer and publishes
// Unauthorized. Safe to call in any state, any number of times.
func (c *Controller) teardown(ctx context.Context, reason string) {
	c.stopRecheck()

	// Cancel any in-flight configuration refresh before wiping; the record
	// must stay gone once this returns.
	c.recordMu.Lock()
	if c.reconcileCancel != nil {
		c.reconcileCancel()
		c.reconcileCancel = nil
	}
	c.wipe(ctx)
	c.recordMu.Unlock()

	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
	c.setState(StateUnauthorized, reason)
}

func (c *Controller) startRecheck() {
	c.entryMu.Lock()
	defer c.entryMu.Unlock()
	if c.entryID != 0 {
		return
	}
	c.entryID = c.cron.Schedule(cron.Every(c.interval), cron.FuncJob(c.tick))
	c.cron.Start()
}

// stopRecheck is unconditional: safe to call when the timer never started.
func (c *Controller) stopRecheck() {
	c.entryMu.Lock()
	defer c.entryMu.Unlock()
	if c.entryID != 0 {
		c.cron.Remove(c.entryID)
		c.entryID = 0
	}
}

// tick is the periodic re-check job. Nothing that happens in here may kill
// the scheduler loop.
func (c *Controller) tick() {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("licence re-check panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c.CheckNow(ctx)
}

// read treats every store failure as an absent value.
func (c *Controller) read(ctx context.Context, key string) string {
	value, ok, err := c.st.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("store read failed")
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

func (c *Controller) setState(state State, reason string) {
	c.mu.Lock()
	if state == StateUnauthorized {
		c.snap = Snapshot{State: state, RevokeReason: reason}
	} else {
		c.snap.State = state
		c.snap.RevokeReason = reason
	}
	c.mu.Unlock()
	c.notify()
}

// notify publishes the current snapshot. Sends happen under the lock so a
// concurrent unsubscribe cannot close a channel mid-send; slow consumers are
// skipped rather than blocked on.
func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- c.snap:
		default:
		}
	}
}
