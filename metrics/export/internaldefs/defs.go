package internaldefs

import (
	adminAuth "github.com/MrEthical07/adminAuth"
)

type CounterDef struct {
	ID   adminAuth.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   adminAuth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: adminAuth.MetricCodeSent, Name: "adminauth_verification_code_sent_total", Help: "Verification codes stored and delivered."},
	{ID: adminAuth.MetricCodeSendFailure, Name: "adminauth_verification_code_send_failure_total", Help: "Verification codes stored but not delivered."},
	{ID: adminAuth.MetricCodeVerified, Name: "adminauth_verification_code_verified_total", Help: "Verification codes redeemed."},
	{ID: adminAuth.MetricCodeInvalid, Name: "adminauth_verification_code_invalid_total", Help: "Verification attempts with a wrong code."},
	{ID: adminAuth.MetricCodeExpired, Name: "adminauth_verification_code_expired_total", Help: "Verification attempts against an expired code."},
	{ID: adminAuth.MetricLoginSuccess, Name: "adminauth_login_success_total", Help: "Successful logins."},
	{ID: adminAuth.MetricLoginFailure, Name: "adminauth_login_failure_total", Help: "Logins rejected for a wrong password."},
	{ID: adminAuth.MetricLoginUnclaimed, Name: "adminauth_login_unclaimed_total", Help: "Logins against unclaimed accounts."},
	{ID: adminAuth.MetricPasswordSet, Name: "adminauth_password_set_total", Help: "Passwords set."},
	{ID: adminAuth.MetricPasswordRejected, Name: "adminauth_password_rejected_total", Help: "Password changes rejected by validation or encryption."},
	{ID: adminAuth.MetricPasswordRehashed, Name: "adminauth_password_rehashed_total", Help: "Password digests upgraded at login."},
	{ID: adminAuth.MetricSessionCreated, Name: "adminauth_session_created_total", Help: "Created sessions."},
	{ID: adminAuth.MetricSessionRefreshed, Name: "adminauth_session_refreshed_total", Help: "Sessions extended to the long lifetime."},
	{ID: adminAuth.MetricAuthorizeAllow, Name: "adminauth_authorize_allow_total", Help: "Authorization checks that allowed the request."},
	{ID: adminAuth.MetricAuthorizeDeny, Name: "adminauth_authorize_deny_total", Help: "Authorization checks that denied the request."},
	{ID: adminAuth.MetricRateLimitHit, Name: "adminauth_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: adminAuth.MetricIntegrityFault, Name: "adminauth_integrity_fault_total", Help: "Email lookups that matched more than one admin user."},
}

var HistogramDefs = []HistogramDef{
	{ID: adminAuth.MetricAuthorizeLatency, Name: "adminauth_authorize_latency_seconds", Help: "Authorization latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's fixed latency buckets.
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

// HistogramBoundSuffix names HistogramBounds in instrument-safe form.
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

// NormalizeBuckets pads or truncates raw to the eight engine buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
