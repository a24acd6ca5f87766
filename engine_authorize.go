package adminAuth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Decision is the outcome of an authorization check. PrincipalID is the
// session's user id and is only set when Allow is true.
type Decision struct {
	Allow       bool
	PrincipalID string
}

// IdentityClaim is the target identity a request body may name.
type IdentityClaim struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

var deny = Decision{}

// Authorize resolves the session named by an Authorization header value.
// Both "Bearer <token>" and a bare token are accepted. A missing header or
// an unknown session yields a deny decision with a nil error; store faults
// are returned as errors.
func (e *Engine) Authorize(ctx context.Context, authorization string) (Decision, error) {
	if e == nil || e.sessions == nil {
		return deny, ErrEngineNotReady
	}
	start := time.Now()
	defer func() {
		e.metricObserve(MetricAuthorizeLatency, time.Since(start))
	}()

	decision, err := e.authorizeToken(ctx, authorization)
	if err != nil {
		return deny, err
	}
	e.countDecision(decision)
	return decision, nil
}

// AuthorizeIdentity is Authorize bound to the identity named in body.
//
// The header is checked first, then body must be a JSON object naming a
// userId or an email. A userId must equal the session's user id. An email
// is resolved through the credential store and its user id must equal the
// session's; unknown emails deny.
func (e *Engine) AuthorizeIdentity(ctx context.Context, authorization string, body []byte) (Decision, error) {
	if e == nil || e.sessions == nil || e.credentials == nil {
		return deny, ErrEngineNotReady
	}
	start := time.Now()
	defer func() {
		e.metricObserve(MetricAuthorizeLatency, time.Since(start))
	}()

	if bearerToken(authorization) == "" {
		e.countDecision(deny)
		return deny, nil
	}

	claim, ok := parseIdentityClaim(body)
	if !ok || (claim.UserID == "" && claim.Email == "") {
		e.countDecision(deny)
		return deny, nil
	}

	decision, err := e.authorizeToken(ctx, authorization)
	if err != nil {
		return deny, err
	}
	if !decision.Allow {
		e.countDecision(deny)
		return deny, nil
	}

	target := claim.UserID
	if target == "" {
		user, err := e.userByEmail(ctx, claim.Email)
		if err != nil {
			if errors.Is(err, ErrNonExistentAdminUser) {
				e.countDecision(deny)
				return deny, nil
			}
			return deny, err
		}
		target = user.UserID
	}

	if target != decision.PrincipalID {
		e.emitAudit(ctx, auditEventIdentityMismatch, false, decision.PrincipalID, nil, nil)
		e.countDecision(deny)
		return deny, nil
	}

	e.countDecision(decision)
	return decision, nil
}

func (e *Engine) authorizeToken(ctx context.Context, authorization string) (Decision, error) {
	token := bearerToken(authorization)
	if token == "" {
		return deny, nil
	}

	sess, err := e.sessions.Fetch(ctx, token)
	if err != nil {
		return deny, err
	}
	if sess == nil || sess.Data.UserID == "" {
		return deny, nil
	}
	return Decision{Allow: true, PrincipalID: sess.Data.UserID}, nil
}

func (e *Engine) countDecision(d Decision) {
	if d.Allow {
		e.metricInc(MetricAuthorizeAllow)
		return
	}
	e.metricInc(MetricAuthorizeDeny)
}

// bearerToken extracts the token from "Bearer <token>". A value without a
// scheme is taken as the token itself; any other scheme yields "".
func bearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	scheme, token, found := strings.Cut(value, " ")
	if !found {
		if strings.EqualFold(value, "Bearer") {
			return ""
		}
		return value
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	token = strings.TrimSpace(token)
	if strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}

func parseIdentityClaim(body []byte) (IdentityClaim, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return IdentityClaim{}, false
	}

	var claim IdentityClaim
	if v, ok := raw["userId"]; ok {
		if err := json.Unmarshal(v, &claim.UserID); err != nil {
			return IdentityClaim{}, false
		}
	}
	if v, ok := raw["email"]; ok {
		if err := json.Unmarshal(v, &claim.Email); err != nil {
			return IdentityClaim{}, false
		}
	}
	return claim, true
}
