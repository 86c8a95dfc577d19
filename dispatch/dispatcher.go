// Package dispatch delivers panic events: primary delivery over the session
// API, with a user-confirmed SMS fallback when the network path fails.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/MauroHerreraJ/vigia/api"
	"github.com/MauroHerreraJ/vigia/internal/phone"
	"github.com/MauroHerreraJ/vigia/session"
)

// EventAlarm is the event type fired by the panic control.
const EventAlarm = "ALARM"

// Outcome is the terminal result of one dispatch attempt.
type Outcome int

const (
	// OutcomeDelivered means the server acknowledged the event.
	OutcomeDelivered Outcome = iota
	// OutcomeFallbackSent means the event was handed to the SMS composer.
	OutcomeFallbackSent
	// OutcomeFallbackDeclined means the user refused the SMS fallback.
	OutcomeFallbackDeclined
	// OutcomeNotConfigured means required session data was missing.
	OutcomeNotConfigured
	// OutcomeFailed means both channels failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFallbackSent:
		return "fallback_sent"
	case OutcomeFallbackDeclined:
		return "fallback_declined"
	case OutcomeNotConfigured:
		return "not_configured"
	case OutcomeFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// ErrNotConfigured is returned when the session record lacks the data needed
// to deliver an event.
var ErrNotConfigured = errors.New("session not configured")

// ErrSMSUnavailable is returned when the fallback channel does not exist on
// this device.
var ErrSMSUnavailable = errors.New("sms not available on this device")

// Sessions is the slice of the session controller the dispatcher needs.
type Sessions interface {
	Snapshot() session.Snapshot
	AccessToken() (string, bool)
}

// Sender delivers a panic event over the primary channel.
type Sender interface {
	SendPanicEvent(ctx context.Context, accessToken, accountNumber string, ev api.PanicEvent) error
}

// Messenger opens the device SMS composer pre-filled with a message. Compose
// reports whether the message was handed off; it must never send silently.
type Messenger interface {
	Available() bool
	Compose(number, body string) (bool, error)
}

// Confirm asks the user for explicit permission before the SMS fallback is
// opened. Returning false aborts the fallback.
type Confirm func(message string) bool

// Dispatcher sends panic events. It does not retry the primary channel:
// panic events are time-critical, so a single failure goes straight to the
// fallback prompt.
type Dispatcher struct {
	sessions Sessions
	sender   Sender
	sms      Messenger
	confirm  Confirm
	log      zerolog.Logger

	// operatorNumber is the configured fallback destination, used when the
	// session has no cached neighborhood phone number.
	operatorNumber string

	// terminate ends the app session after a confirmed delivery. Delivery is
	// fire-and-forget once acknowledged; no further interaction is expected.
	terminate func()

	// haptic fires device feedback when the gesture completes.
	haptic func()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithOperatorNumber sets the configured fallback SMS destination.
func WithOperatorNumber(number string) DispatcherOption {
	return func(d *Dispatcher) { d.operatorNumber = number }
}

// WithTerminate sets the hook that ends the app session after delivery.
func WithTerminate(fn func()) DispatcherOption {
	return func(d *Dispatcher) { d.terminate = fn }
}

// WithHaptic sets the feedback hook fired when dispatch begins.
func WithHaptic(fn func()) DispatcherOption {
	return func(d *Dispatcher) { d.haptic = fn }
}

// WithDispatchLogger sets the structured logger.
func WithDispatchLogger(log zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

// NewDispatcher creates a Dispatcher. confirm gates the SMS fallback and must
// not be nil.
func NewDispatcher(sessions Sessions, sender Sender, sms Messenger, confirm Confirm, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sessions:  sessions,
		sender:    sender,
		sms:       sms,
		confirm:   confirm,
		log:       zerolog.Nop(),
		terminate: func() {},
		haptic:    func() {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one panic event. The primary channel is tried exactly once;
// any failure falls through to the user-confirmed SMS fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string) (Outcome, error) {
	if eventType == "" {
		eventType = EventAlarm
	}
	d.haptic()

	snap := d.sessions.Snapshot()
	token, ok := d.sessions.AccessToken()
	if !ok || snap.AccountNumber == "" {
		d.log.Error().Str("state", snap.State.String()).Msg("panic dispatch without a configured session")
		return OutcomeNotConfigured, ErrNotConfigured
	}

	ev := api.PanicEvent{EventType: eventType, Timestamp: time.Now().UTC()}
	err := d.sender.SendPanicEvent(ctx, token, snap.AccountNumber, ev)
	if err == nil {
		d.log.Info().Str("event", eventType).Msg("panic event delivered")
		d.terminate()
		return OutcomeDelivered, nil
	}
	d.log.Error().Err(err).Msg("primary panic delivery failed, offering sms fallback")
	return d.fallback(snap, eventType)
}

// fallback routes the event through the device SMS composer. It never sends
// without explicit confirmation, and there is no further fallback behind it.
func (d *Dispatcher) fallback(snap session.Snapshot, eventType string) (Outcome, error) {
	number, ok := phone.Resolve(snap.ContactPhone, d.operatorNumber)
	if !ok {
		return OutcomeFailed, errors.New("no fallback sms number configured")
	}
	if !d.sms.Available() {
		return OutcomeFailed, ErrSMSUnavailable
	}
	if !d.confirm("The event could not be sent over the network. Open the messaging app to send it manually?") {
		d.log.Warn().Msg("sms fallback declined by user")
		return OutcomeFallbackDeclined, nil
	}

	body := api.Frame(snap.AccountNumber)
	sent, err := d.sms.Compose(number, body)
	if err != nil {
		return OutcomeFailed, err
	}
	if !sent {
		return OutcomeFailed, errors.New("sms composer did not hand off the message")
	}
	d.log.Info().Str("event", eventType).Msg("panic event handed to sms composer")
	d.terminate()
	return OutcomeFallbackSent, nil
}
