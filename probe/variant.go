package probe

import (
	"context"

	"github.com/ekobres/edgerank/model"
)

// AttemptOutcome is what a single probe variant reports for one attempt.
type AttemptOutcome struct {
	OK        bool
	ElapsedMS float64
	// Colo is set only by HTTP variants, only on a response with an
	// accepted status that carried a parseable cf-ray header (including
	// the OK=false outcome whose colo the filter rejected).
	Colo string
	// ColoKnownButRejected signals that a colo was extracted but failed
	// the configured filter; the caller aborts remaining attempts for
	// this endpoint per spec §4.2.
	ColoKnownButRejected bool
}

// Variant is the capability set spec §9 calls for instead of a deep probe
// class hierarchy: a tagged implementation per mode.
type Variant interface {
	// ProbeOne issues a single attempt against endpoint, honoring ctx
	// cancellation and the policy's per-attempt timeout.
	ProbeOne(ctx context.Context, endpoint model.Endpoint, urlIndex uint64) AttemptOutcome
}

// NewVariant constructs the Variant for the configured mode.
func NewVariant(p Policy) Variant {
	switch p.Mode {
	case ModeHTTPHeadPlaintext:
		return newHTTPVariant(p, false)
	case ModeHTTPHeadTLS:
		return newHTTPVariant(p, true)
	case ModeICMPEcho:
		return newICMPVariant(p)
	default:
		return newTCPVariant(p)
	}
}
