package mfasdk

import (
	"time"

	"github.com/nexosupport/nexomfa/pkg/jwtx"
)

// ErrorResponse is the wire form of APIError.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_request"`
	ErrorDescription string `json:"error_description" example:"user_id is required"`
}

// ============================================================================
// Factors
// ============================================================================

// FactorDescriptor describes one enabled factor.
type FactorDescriptor struct {
	Name       string `json:"name" example:"totp"`
	Weight     int    `json:"weight" example:"100"`
	HasInput   bool   `json:"has_input" example:"true"`
	Required   bool   `json:"required" example:"true"`
	Sufficient bool   `json:"sufficient" example:"true"`
}

// FactorsResponse lists enabled factors in presentation order.
type FactorsResponse struct {
	Factors []FactorDescriptor `json:"factors"`

	// HasInputFactors is false when no enabled factor needs user input, in
	// which case the portal can skip the verification page entirely.
	HasInputFactors bool `json:"has_input_factors"`
}

// ============================================================================
// Sessions
// ============================================================================

type StartSessionRequest struct {
	UserID     string `json:"user_id" example:"42"`
	RemoteAddr string `json:"remote_addr,omitempty" example:"203.0.113.7"`
}

type SessionFactorState struct {
	Factor   string `json:"factor" example:"sms"`
	State    string `json:"state" example:"unknown" enums:"unknown,pass,fail,neutral,locked"`
	Attempts int    `json:"attempts"`
}

type SessionResponse struct {
	ID          string               `json:"id" example:"01HZX3Q4J9K2M8N7P6R5S4T3V2"`
	UserID      string               `json:"user_id" example:"42"`
	Status      string               `json:"status" example:"pending" enums:"pending,satisfied,failed"`
	CreatedAt   time.Time            `json:"created_at"`
	ExpiresAt   time.Time            `json:"expires_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Factors     []SessionFactorState `json:"factors"`
}

// Delivery tells the user where a one-time code was sent.
type Delivery struct {
	Factor      string    `json:"factor" example:"sms"`
	Destination string    `json:"destination" example:"+54*********34"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NextFactorResponse is the next step of a session. Done is true once there
// is nothing left to ask the user; Status then says how the session ended.
type NextFactorResponse struct {
	SessionID string           `json:"session_id"`
	Status    string           `json:"status" enums:"pending,satisfied,failed"`
	Done      bool             `json:"done"`
	Factor    FactorDescriptor `json:"factor"`
	Delivery  *Delivery        `json:"delivery,omitempty"`

	// Throttled is set when the factor needs a code but the user has hit the
	// send limit. The code already delivered, if any, is still valid.
	Throttled bool `json:"throttled,omitempty"`

	Assertion          string     `json:"assertion,omitempty"`
	AssertionExpiresAt *time.Time `json:"assertion_expires_at,omitempty"`
}

type VerifyRequest struct {
	Factor string `json:"factor" example:"totp"`
	Code   string `json:"code" example:"123456"`
}

// VerifyResponse reports the outcome of one submitted code.
type VerifyResponse struct {
	SessionID string `json:"session_id"`
	Factor    string `json:"factor" example:"totp"`
	Outcome   string `json:"outcome" example:"pass" enums:"pass,fail,expired,not_applicable,locked"`
	State     string `json:"state" example:"pass"`
	Status    string `json:"status" example:"satisfied"`
	Attempts  int    `json:"attempts" example:"1"`

	// RemainingAttempts before the factor locks for the user.
	RemainingAttempts int `json:"remaining_attempts" example:"4"`

	Assertion          string     `json:"assertion,omitempty"`
	AssertionExpiresAt *time.Time `json:"assertion_expires_at,omitempty"`
}

// ============================================================================
// Enrollment
// ============================================================================

type UserFactor struct {
	Factor         string     `json:"factor" example:"sms"`
	Label          string     `json:"label,omitempty" example:"work phone"`
	Destination    string     `json:"destination,omitempty" example:"+54*********34"`
	Confirmed      bool       `json:"confirmed"`
	Locked         bool       `json:"locked"`
	LockCounter    int        `json:"lock_counter"`
	Remaining      *int       `json:"remaining,omitempty"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type UserFactorsResponse struct {
	UserID  string       `json:"user_id"`
	Factors []UserFactor `json:"factors"`
}

type TOTPBeginRequest struct {
	// Account is shown in the authenticator app, usually the username.
	Account string `json:"account" example:"jdoe"`
}

type TOTPEnrollResponse struct {
	Secret     string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	OTPAuthURL string `json:"otpauth_url" example:"otpauth://totp/NexoSupport:jdoe?secret=JBSWY3DPEHPK3PXP&issuer=NexoSupport"`
	Issuer     string `json:"issuer" example:"NexoSupport"`
	Account    string `json:"account" example:"jdoe"`
}

type TOTPConfirmRequest struct {
	Code string `json:"code" example:"123456"`
}

type DestinationRequest struct {
	Destination string `json:"destination" example:"+54 9 11 5555 1234"`
	Label       string `json:"label,omitempty" example:"mobile"`
}

type BackupCodesResponse struct {
	Codes []string `json:"codes" example:"ABCD-EFGH,JKLM-NPQR"`
}

type AuditEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Factor     string    `json:"factor,omitempty"`
	Event      string    `json:"event" example:"factor_passed"`
	Detail     string    `json:"detail,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditResponse is one page of audit events, newest first. Pass NextBefore
// back as the before parameter to fetch the next page.
type AuditResponse struct {
	Events     []AuditEvent `json:"events"`
	NextBefore string       `json:"next_before,omitempty"`
}

// ============================================================================
// IP ranges
// ============================================================================

type IPRange struct {
	ID          string    `json:"id"`
	CIDR        string    `json:"cidr" example:"10.0.0.0/8"`
	Kind        string    `json:"kind" example:"allow" enums:"allow,deny"`
	Description string    `json:"description,omitempty" example:"office network"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateIPRangeRequest struct {
	CIDR        string `json:"cidr" example:"10.0.0.0/8"`
	Kind        string `json:"kind" example:"allow" enums:"allow,deny"`
	Description string `json:"description,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

type IPRangesResponse struct {
	Ranges []IPRange `json:"ranges"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty" example:"1h23m45s"`
	Version string        `json:"version,omitempty" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Throttle string `json:"throttle,omitempty"`
}

// JWKSResponse holds the keys that verify session assertions.
type JWKSResponse jwtx.JWKS
