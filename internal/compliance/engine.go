// Package compliance orchestrates duplicate, classification, permit, GPS,
// pairing, and quota checks into one allow/block verdict and persists it to
// the decision cache. Business-rule blocks are reason codes on the decision,
// never errors; errors mean the verification itself was impossible.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetgate/internal/classifier"
	"fleetgate/internal/compliance/ports"
	"fleetgate/internal/domain"
	"fleetgate/internal/fingerprint"
	"fleetgate/internal/inference"
	"fleetgate/internal/normalizer"
	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/sentinel"
	platformstrings "fleetgate/pkg/platform/strings"
)

// Policy holds the tunable thresholds of the decision engine.
type Policy struct {
	CacheTTL          time.Duration
	InvalidCacheTTL   time.Duration
	GPSStaleness      time.Duration
	PermitWarnWindow  time.Duration
	OperatorMaxActive int
}

// DefaultPolicy returns the reference policy.
func DefaultPolicy() Policy {
	return Policy{
		CacheTTL:          7 * 24 * time.Hour,
		InvalidCacheTTL:   time.Hour,
		GPSStaleness:      60 * time.Minute,
		PermitWarnWindow:  7 * 24 * time.Hour,
		OperatorMaxActive: 10,
	}
}

// deniedPermitTypes always block; registries report these for vehicles that
// must not carry commercial freight.
var deniedPermitTypes = map[string]bool{
	"PRIVATE": true,
	"NONE":    true,
}

// advisoryReasons are recorded on the decision but do not block on their own.
// An unclassifiable axle/tyre configuration still gets manual review via the
// reason code; it is not enough to keep a vehicle off the platform.
var advisoryReasons = map[string]bool{
	"UNKNOWN_FLEET_TYPE": true,
}

// permitDateLayouts covers the expiry formats providers actually emit.
var permitDateLayouts = []string{"2006-01-02", "02/01/2006", "02-Jan-2006"}

// CheckInput bundles everything one compliance check needs. The caller supplies
// the latest provider response plus whatever operational context it has.
type CheckInput struct {
	RegistrationNumber string
	OperatorID         string
	Response           domain.ProviderResponse

	GPSLastPing     *time.Time
	IsTrailer       bool
	LinkedTractorRC string
}

// Engine evaluates the compliance rule chain. All checks run (no
// short-circuit) so a single decision reports every applicable reason; the
// sole exception is snapshot validation, which is a deterministic dead end.
type Engine struct {
	decisions ports.DecisionStore
	operators ports.OperatorStore
	policy    Policy
	now       ports.Clock
}

// NewEngine creates an Engine with the given stores and policy.
func NewEngine(decisions ports.DecisionStore, operators ports.OperatorStore, policy Policy) *Engine {
	return &Engine{
		decisions: decisions,
		operators: operators,
		policy:    policy,
		now:       time.Now,
	}
}

// WithClock overrides the engine clock. Test hook.
func (e *Engine) WithClock(clock ports.Clock) *Engine {
	e.now = clock
	return e
}

// Check runs the full rule chain and returns the decision. The returned error
// is non-nil only for system-level failures (store unreachable); callers must
// treat that as "verification unavailable", not as a compliance block.
func (e *Engine) Check(ctx context.Context, input CheckInput) (domain.ComplianceDecision, error) {
	now := e.now()

	snap := normalizer.Normalize(input.Response.RawPayload, input.Response.Provider)
	if snap.RegistrationNumber == "" {
		snap.RegistrationNumber = strings.ToUpper(input.RegistrationNumber)
	}

	decision := domain.ComplianceDecision{
		RegistrationNumber: strings.ToUpper(input.RegistrationNumber),
		OperatorID:         input.OperatorID,
		LastVerification: domain.VerificationMeta{
			Provider:      input.Response.Provider,
			TransactionID: input.Response.TransactionID,
			Timestamp:     input.Response.Timestamp,
		},
	}

	// Gate 1: the snapshot must be verifiable at all. Failing validation is a
	// deterministic BLOCKED outcome cached with a short TTL so the nightly
	// batch retries it soon.
	if validation := normalizer.Validate(snap); !validation.Valid {
		decision.Status = domain.StatusBlocked
		decision.ReasonCodes = validation.Errors
		decision.CacheExpiresAt = now.Add(e.policy.InvalidCacheTTL)
		return decision, nil
	}

	var reasons []string

	chassisHash, _ := fingerprint.New(snap.ChassisNumber)
	engineHash, _ := fingerprint.New(snap.EngineNumber)
	decision.ChassisHash = chassisHash
	decision.EngineHash = engineHash

	dupReasons, err := e.checkDuplicate(ctx, decision)
	if err != nil {
		return domain.ComplianceDecision{}, err
	}
	reasons = append(reasons, dupReasons...)

	classification := classifier.Classify(snap)
	reasons = append(reasons, classification.BlockReasons...)

	reasons = append(reasons, e.checkPermit(snap, now)...)
	reasons = append(reasons, e.checkGPS(input.GPSLastPing, now)...)

	if input.IsTrailer && input.LinkedTractorRC == "" {
		reasons = append(reasons, "PENDING_TRACTOR_PAIRING")
	}

	quotaReasons, err := e.checkQuota(ctx, input.OperatorID)
	if err != nil {
		return domain.ComplianceDecision{}, err
	}
	reasons = append(reasons, quotaReasons...)

	// Inference feeds cached metadata only; it never blocks.
	inferred := inference.BodyLength(snap)

	decision.Status = domain.StatusAllowed
	for _, reason := range reasons {
		if !advisoryReasons[reason] {
			decision.Status = domain.StatusBlocked
			break
		}
	}
	decision.ReasonCodes = platformstrings.DedupeAndTrim(reasons)
	decision.Classification = classification.Classification
	decision.BodyCategory = classification.BodyCategory
	decision.BodyLengthFt = inferred.BodyLengthFt
	decision.GVWKg = snap.GVWKg
	decision.TyreCount = snap.TyreCount
	decision.AxleCount = snap.AxleCount
	decision.CacheExpiresAt = now.Add(e.policy.CacheTTL)

	return decision, nil
}

func (e *Engine) checkDuplicate(ctx context.Context, decision domain.ComplianceDecision) ([]string, error) {
	other, err := e.decisions.FindByFingerprint(ctx,
		decision.ChassisHash, decision.EngineHash,
		decision.RegistrationNumber, decision.OperatorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "duplicate lookup failed")
	}

	kind := "CHASSIS"
	if other.ChassisHash != decision.ChassisHash {
		kind = "ENGINE"
	}
	return []string{fmt.Sprintf("DUPLICATE_%s_%s_%s", kind, other.RegistrationNumber, other.OperatorID)}, nil
}

func (e *Engine) checkPermit(snap domain.VehicleSnapshot, now time.Time) []string {
	var reasons []string

	permitType := strings.TrimSpace(snap.PermitType)
	if deniedPermitTypes[permitType] {
		reasons = append(reasons, "PERMIT_TYPE_BLOCKED_"+permitType)
	}

	// Blank expiry is deliberately acceptable: registries are inconsistent
	// about reporting it and tightening here would ground real fleets.
	expiryRaw := strings.TrimSpace(snap.PermitExpiry)
	if expiryRaw == "" {
		return reasons
	}

	expiry, ok := parsePermitDate(expiryRaw)
	if !ok {
		// A present-but-garbled date is not the same as an absent one: the
		// registry asserted an expiry we cannot read, so block until a human
		// looks at it.
		return append(reasons, "PERMIT_EXPIRY_UNPARSEABLE")
	}
	switch {
	case expiry.Before(now):
		reasons = append(reasons, "PERMIT_EXPIRED")
	case expiry.Sub(now) <= e.policy.PermitWarnWindow:
		reasons = append(reasons, "PERMIT_EXPIRING_SOON")
	}
	return reasons
}

func (e *Engine) checkGPS(lastPing *time.Time, now time.Time) []string {
	if lastPing == nil {
		return []string{"GPS_PING_MISSING"}
	}
	if now.Sub(*lastPing) > e.policy.GPSStaleness {
		return []string{"GPS_PING_STALE"}
	}
	return nil
}

func (e *Engine) checkQuota(ctx context.Context, operatorID string) ([]string, error) {
	count, err := e.operators.ActiveVehicleCount(ctx, operatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "operator quota lookup failed")
	}
	if count >= e.policy.OperatorMaxActive {
		return []string{fmt.Sprintf("OPERATOR_QUOTA_EXCEEDED_%d_MAX_%d", count, e.policy.OperatorMaxActive)}, nil
	}
	return nil, nil
}

func parsePermitDate(s string) (time.Time, bool) {
	for _, layout := range permitDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
