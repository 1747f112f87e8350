package internaldefs

import (
	identity "github.com/ghuysu/social-media-sub000"
)

// CounterDef binds one engine counter to its exported metric name.
type CounterDef struct {
	ID   identity.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its exported metric name.
type HistogramDef struct {
	ID   identity.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: identity.MetricChallengeIssued, Name: "identity_challenge_issued_total", Help: "Verification challenges issued across all flows."},
	{ID: identity.MetricChallengeConsumed, Name: "identity_challenge_consumed_total", Help: "Challenges spent by a correct code."},
	{ID: identity.MetricCodeIncorrect, Name: "identity_code_incorrect_total", Help: "Completion attempts rejected for a wrong code."},
	{ID: identity.MetricChallengeExpired, Name: "identity_challenge_expired_total", Help: "Completion attempts that found no live challenge."},
	{ID: identity.MetricSignUpCompleted, Name: "identity_sign_up_completed_total", Help: "Accounts created through the sign-up flow."},
	{ID: identity.MetricPasswordChanged, Name: "identity_password_changed_total", Help: "Credential overwrites through the password-change flow."},
	{ID: identity.MetricSignInSuccess, Name: "identity_sign_in_success_total", Help: "Successful password verifications."},
	{ID: identity.MetricSignInFailure, Name: "identity_sign_in_failure_total", Help: "Sign-in attempts rejected for unknown account or wrong password."},
	{ID: identity.MetricAdminChallengeIssued, Name: "identity_admin_challenge_issued_total", Help: "Administrator sign-ins advanced to the second factor."},
	{ID: identity.MetricAdminSignInCompleted, Name: "identity_admin_sign_in_completed_total", Help: "Administrator sessions issued after the second factor."},
	{ID: identity.MetricTokenIssued, Name: "identity_token_issued_total", Help: "Session tokens signed, both roles."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: identity.MetricVerifyLatency, Name: "identity_verify_latency_seconds", Help: "Code verification latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's latency buckets,
// in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds metric-name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
