// Package scan validates and debounces raw barcode recognition events.
package scan

import (
	"fmt"
	"strings"
)

// DefaultCooldownMs is how long an accepted payload suppresses itself.
const DefaultCooldownMs int64 = 1000

// Event is one raw recognition callback. It is forwarded unmodified on accept.
type Event struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// State is the debouncer's memory of the last accepted scan.
type State struct {
	LastPayload      string
	HasLast          bool
	LastAcceptedAtMs int64
}

// Decision is the verdict on a raw event.
type Decision int

const (
	Reject Decision = iota
	Accept
)

func (d Decision) String() string {
	if d == Accept {
		return "accept"
	}
	return "reject"
}

// Result carries the decision and, for rejections, why.
type Result struct {
	Decision Decision
	Reason   error
}

// Accepted reports whether the event was accepted.
func (r Result) Accepted() bool {
	return r.Decision == Accept
}

// Validate checks payload shape against the event type. Only symbologies in
// allowed pass; a nil set allows everything in Supported.
func Validate(e Event, allowed Set) error {
	if strings.TrimSpace(e.Data) == "" {
		return ErrEmptyPayload
	}

	sym, err := ParseSymbology(e.Type)
	if err != nil {
		return err
	}
	if allowed != nil && !allowed.Contains(sym) {
		return fmt.Errorf("%w: %s is disabled", ErrUnsupportedSymbology, sym)
	}

	if n := sym.FixedDigits(); n > 0 {
		if len(e.Data) != n || !allDigits(e.Data) {
			return fmt.Errorf("%w: %s wants %d digits", ErrMalformedPayload, sym, n)
		}
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ShouldAccept applies the per-payload cooldown. A different payload is always
// accepted; the same payload only once the window since its last acceptance
// has elapsed.
func ShouldAccept(st State, e Event, nowMs, cooldownMs int64) bool {
	if !st.HasLast || st.LastPayload != e.Data {
		return true
	}
	return nowMs-st.LastAcceptedAtMs >= cooldownMs
}

// Debouncer turns a noisy recognition stream into discrete accepted scans. It
// is not safe for concurrent use.
type Debouncer struct {
	cooldownMs int64
	allowed    Set
	state      State
}

// NewDebouncer creates a Debouncer. A non-positive cooldown selects the
// default; a nil set allows every supported symbology.
func NewDebouncer(cooldownMs int64, allowed Set) *Debouncer {
	if cooldownMs <= 0 {
		cooldownMs = DefaultCooldownMs
	}
	return &Debouncer{cooldownMs: cooldownMs, allowed: allowed}
}

// State returns a copy of the debounce state.
func (d *Debouncer) State() State {
	return d.state
}

// CooldownMs returns the effective cooldown.
func (d *Debouncer) CooldownMs() int64 {
	return d.cooldownMs
}

// OnRawScan decides whether e is a new scan. State only changes on accept.
func (d *Debouncer) OnRawScan(e Event, nowMs int64, ready bool) Result {
	if !ready {
		return Result{Decision: Reject, Reason: ErrNotReady}
	}
	if err := Validate(e, d.allowed); err != nil {
		return Result{Decision: Reject, Reason: err}
	}
	if !ShouldAccept(d.state, e, nowMs, d.cooldownMs) {
		return Result{Decision: Reject, Reason: ErrDuplicate}
	}

	d.state = State{LastPayload: e.Data, HasLast: true, LastAcceptedAtMs: nowMs}
	return Result{Decision: Accept}
}
