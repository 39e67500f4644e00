package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/store"
	"github.com/nexosupport/nexomfa/internal/mfa/throttle"
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/nexosupport/nexomfa/pkg/jwtx"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

const (
	DefaultSessionTTL       = 15 * time.Minute
	DefaultLockoutThreshold = 5
)

// LoginService runs the per-login verification state machine. The portal
// starts a session after the password check, asks for the next factor,
// submits codes, and receives a signed assertion once the session is
// satisfied.
type LoginService struct {
	Store    store.Store
	Registry *factor.Registry
	Signer   jwtx.Signer

	Issuer       string
	Audience     []string
	SessionTTL   time.Duration
	AssertionTTL time.Duration

	// LockoutThreshold is the number of consecutive failures that lock a
	// factor for the user. LockoutDuration > 0 releases locks automatically.
	LockoutThreshold int
	LockoutDuration  time.Duration

	// RequireEnrollment fails sessions in which no factor passed, instead of
	// letting users without any setup through.
	RequireEnrollment bool

	Now func() time.Time
}

// NextStep is what the login page needs to render.
type NextStep struct {
	Session   domain.Session
	Factor    factor.Factor
	Delivery  *domain.Delivery
	Throttled bool

	Assertion          string
	AssertionExpiresAt *time.Time
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utcNow()
}

func (s *LoginService) threshold() int {
	if s.LockoutThreshold > 0 {
		return s.LockoutThreshold
	}
	return DefaultLockoutThreshold
}

// Start opens a verification session with every enabled factor unknown.
func (s *LoginService) Start(ctx context.Context, userID, remoteAddr string) (domain.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Session{}, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := s.now()
	sess := domain.Session{
		ID:         idx.NewAt(now).String(),
		UserID:     userID,
		RemoteAddr: remoteAddr,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	for _, f := range s.Registry.Enabled() {
		sess.Factors = append(sess.Factors, domain.SessionFactor{
			Factor:    f.Name(),
			State:     domain.StateUnknown,
			UpdatedAt: now,
		})
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
			return err
		}
		writeAudit(ctx, tx, now, domain.AuditEvent{
			UserID:     userID,
			SessionID:  sess.ID,
			Event:      domain.EventSessionStarted,
			RemoteAddr: remoteAddr,
		})
		return nil
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}

	slogx.FromContext(ctx).InfoContext(ctx, "mfa session started",
		"session_id", sess.ID,
		"user_id", userID,
		"factors", len(sess.Factors),
	)
	return sess, nil
}

// Get returns the session as stored, regardless of expiry.
func (s *LoginService) Get(ctx context.Context, id string) (domain.Session, error) {
	sess, err := s.Store.Sessions().GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// open loads a session that can still make progress.
func (s *LoginService) open(ctx context.Context, id string) (domain.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if sess.Closed() {
		return domain.Session{}, ErrSessionClosed
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, ErrSessionExpired
	}
	return sess, nil
}

// NextFactor returns the factor to present next, or factor.Fallback when
// nothing is left to ask for.
func (s *LoginService) NextFactor(ctx context.Context, sessionID string) (factor.Factor, error) {
	step, err := s.Next(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return step.Factor, nil
}

// Next resolves whatever can be resolved without user input and returns the
// next step. Code factors get their code issued the first time they are
// offered in a session. When the session completes, the step carries the
// assertion (satisfied) or just the failed status.
func (s *LoginService) Next(ctx context.Context, sessionID string) (NextStep, error) {
	sess, err := s.open(ctx, sessionID)
	if err != nil {
		return NextStep{}, err
	}

	evs, err := s.resolve(ctx, &sess)
	if err != nil {
		return NextStep{}, err
	}

	step := NextStep{Factor: factor.Fallback}
	status := s.status(evs)
	if status != domain.StatusPending {
		step.Assertion, step.AssertionExpiresAt, err = s.complete(ctx, &sess, evs, status)
		if err != nil {
			return NextStep{}, err
		}
		step.Session = sess
		return step, nil
	}

	if f := pick(evs); f != nil {
		step.Factor = f
	}
	step.Session = sess

	issuer, ok := step.Factor.(factor.Issuer)
	if !ok {
		return step, nil
	}
	first, err := s.Store.Sessions().MarkChallenged(ctx, sess.ID, step.Factor.Name(), s.now())
	if err != nil {
		return NextStep{}, err
	}
	if !first {
		return step, nil
	}
	d, err := s.issue(ctx, sess, step.Factor, issuer)
	switch {
	case errors.Is(err, throttle.ErrLimited):
		step.Throttled = true
	case err != nil:
		return NextStep{}, err
	default:
		step.Delivery = &d
	}
	return step, nil
}

// Resend issues a fresh code for a pending code factor of the session.
func (s *LoginService) Resend(ctx context.Context, sessionID, factorName string) (domain.Delivery, error) {
	sess, err := s.open(ctx, sessionID)
	if err != nil {
		return domain.Delivery{}, err
	}
	f, sf, err := s.sessionFactor(sess, factorName)
	if err != nil {
		return domain.Delivery{}, err
	}
	issuer, ok := f.(factor.Issuer)
	if !ok {
		return domain.Delivery{}, ErrNotInteractive
	}
	if sf.State.Resolved() {
		return domain.Delivery{}, ErrFactorResolved
	}
	if _, err := s.Store.Sessions().MarkChallenged(ctx, sess.ID, f.Name(), s.now()); err != nil {
		return domain.Delivery{}, err
	}
	return s.issue(ctx, sess, f, issuer)
}

func (s *LoginService) issue(ctx context.Context, sess domain.Session, f factor.Factor, issuer factor.Issuer) (domain.Delivery, error) {
	d, err := issuer.Issue(ctx, sess.UserID)
	ev := domain.AuditEvent{
		UserID:     sess.UserID,
		SessionID:  sess.ID,
		Factor:     f.Name(),
		Event:      domain.EventCodeIssued,
		RemoteAddr: sess.RemoteAddr,
	}
	switch {
	case errors.Is(err, throttle.ErrLimited):
		ev.Event = domain.EventCodeThrottled
		writeAudit(ctx, s.Store, s.now(), ev)
		slogx.FromContext(ctx).WarnContext(ctx, "code issuance throttled",
			"session_id", sess.ID, "factor", f.Name())
		return domain.Delivery{}, err
	case err != nil:
		return domain.Delivery{}, fmt.Errorf("issue %s code: %w", f.Name(), err)
	}
	ev.Detail = d.Destination
	writeAudit(ctx, s.Store, s.now(), ev)
	return d, nil
}

func (s *LoginService) sessionFactor(sess domain.Session, name string) (factor.Factor, domain.SessionFactor, error) {
	sf, ok := sess.Factor(name)
	if !ok {
		return nil, domain.SessionFactor{}, fmt.Errorf("%w: %s", factor.ErrFactorNotFound, name)
	}
	f, err := s.Registry.ByName(name)
	if err != nil {
		return nil, domain.SessionFactor{}, err
	}
	return f, sf, nil
}

// VerifyFactor submits user input for one factor. Wrong, expired and
// locked are reported as outcomes; errors mean the request itself could
// not be processed.
func (s *LoginService) VerifyFactor(ctx context.Context, sessionID, factorName, code string) (domain.VerifyResult, error) {
	sess, err := s.open(ctx, sessionID)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	f, sf, err := s.sessionFactor(sess, factorName)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	if !f.HasInput() {
		return domain.VerifyResult{}, ErrNotInteractive
	}
	if sf.State == domain.StatePass || sf.State == domain.StateNeutral {
		return domain.VerifyResult{}, ErrFactorResolved
	}

	l := slogx.FromContext(ctx).With("session_id", sess.ID, "factor", f.Name())
	res := domain.VerifyResult{
		SessionID: sess.ID,
		Factor:    f.Name(),
		Attempts:  sf.Attempts,
	}

	locked := sf.State == domain.StateLocked
	switch {
	case locked && s.LockoutDuration > 0:
		// A timed lock can lapse while the session is still open.
		released, err := s.lockReleased(ctx, sess.UserID, f.Name())
		if err != nil {
			return domain.VerifyResult{}, err
		}
		locked = !released
		if released {
			l.InfoContext(ctx, "factor lock released mid-session")
		}
	case !locked:
		locked, err = s.enrollmentLocked(ctx, sess.UserID, f.Name())
		if err != nil {
			return domain.VerifyResult{}, err
		}
	}

	if locked {
		res.Outcome = domain.OutcomeLocked
		if err := s.setState(ctx, &sess, f.Name(), domain.StateLocked); err != nil {
			return domain.VerifyResult{}, err
		}
		l.InfoContext(ctx, "verification rejected, factor locked")
	} else {
		res.Attempts, err = s.Store.Sessions().IncrementFactorAttempts(ctx, sess.ID, f.Name(), s.now())
		if err != nil {
			return domain.VerifyResult{}, err
		}
		res.Outcome, err = f.Verify(ctx, factor.Request{
			UserID:     sess.UserID,
			Code:       code,
			RemoteAddr: sess.RemoteAddr,
		})
		if err != nil {
			return domain.VerifyResult{}, fmt.Errorf("verify %s: %w", f.Name(), err)
		}
		res.Remaining, err = s.record(ctx, &sess, f.Name(), res.Outcome, res.Attempts)
		if err != nil {
			return domain.VerifyResult{}, err
		}
		l.InfoContext(ctx, "factor verified", "outcome", res.Outcome, "attempts", res.Attempts)
	}

	after, _ := sess.Factor(f.Name())
	res.State = after.State

	evs, err := s.resolve(ctx, &sess)
	if err != nil {
		return domain.VerifyResult{}, err
	}
	res.Status = s.status(evs)
	if res.Status != domain.StatusPending {
		res.Assertion, res.AssertionAt, err = s.complete(ctx, &sess, evs, res.Status)
		if err != nil {
			return domain.VerifyResult{}, err
		}
	}
	return res, nil
}

// record applies a verification outcome to the session and the user's lock
// counter. It returns the attempts left before the factor locks.
func (s *LoginService) record(ctx context.Context, sess *domain.Session, name string, outcome domain.Outcome, attempts int) (int, error) {
	now := s.now()
	threshold := s.threshold()
	ev := domain.AuditEvent{
		UserID:     sess.UserID,
		SessionID:  sess.ID,
		Factor:     name,
		RemoteAddr: sess.RemoteAddr,
	}

	switch outcome {
	case domain.OutcomePass:
		ev.Event = domain.EventFactorPassed
		writeAudit(ctx, s.Store, now, ev)
		return threshold, s.setState(ctx, sess, name, domain.StatePass)

	case domain.OutcomeNotApplicable:
		return threshold, s.setState(ctx, sess, name, domain.StateNeutral)

	case domain.OutcomeLocked:
		return 0, s.setState(ctx, sess, name, domain.StateLocked)
	}

	// fail or expired
	counter, err := s.Store.Enrollments().IncrementLockCounter(ctx, sess.UserID, name, threshold, now)
	if errors.Is(err, store.ErrNotFound) {
		// Factors without an enrollment row count per session.
		counter, err = attempts, nil
	}
	if err != nil {
		return 0, fmt.Errorf("increment lock counter: %w", err)
	}

	ev.Event = domain.EventFactorFailed
	ev.Detail = string(outcome)
	writeAudit(ctx, s.Store, now, ev)

	if counter >= threshold {
		ev.Event = domain.EventFactorLocked
		ev.Detail = fmt.Sprintf("%d consecutive failures", counter)
		writeAudit(ctx, s.Store, now, ev)
		slogx.FromContext(ctx).WarnContext(ctx, "factor locked",
			"user_id", sess.UserID, "factor", name, "failures", counter)
		return 0, s.setState(ctx, sess, name, domain.StateLocked)
	}
	return threshold - counter, s.setState(ctx, sess, name, domain.StateFail)
}

func (s *LoginService) setState(ctx context.Context, sess *domain.Session, name string, st domain.State) error {
	now := s.now()
	if err := s.Store.Sessions().SetFactorState(ctx, sess.ID, name, st, now); err != nil {
		return fmt.Errorf("set factor state: %w", err)
	}
	sess.SetState(name, st, now)
	return nil
}

// enrollmentLocked reports whether the user's enrollment for the factor is
// locked, releasing locks whose duration has passed.
func (s *LoginService) enrollmentLocked(ctx context.Context, userID, name string) (bool, error) {
	e, err := s.Store.Enrollments().GetActiveEnrollment(ctx, userID, name)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if e.LockedAt == nil {
		return false, nil
	}
	now := s.now()
	if e.Locked(now, s.LockoutDuration) {
		return true, nil
	}

	if err := s.Store.Enrollments().Unlock(ctx, userID, name, now); err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	writeAudit(ctx, s.Store, now, domain.AuditEvent{
		UserID: userID,
		Factor: name,
		Event:  domain.EventFactorUnlocked,
		Detail: "lockout expired",
	})
	return false, nil
}

// lockReleased reports whether a session-locked factor may be tried again
// because its enrollment lock has lapsed or was cleared. Factors without an
// enrollment lock per session and stay locked.
func (s *LoginService) lockReleased(ctx context.Context, userID, name string) (bool, error) {
	if _, err := s.Store.Enrollments().GetActiveEnrollment(ctx, userID, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	locked, err := s.enrollmentLocked(ctx, userID, name)
	return !locked, err
}

type evaluated struct {
	f  factor.Factor
	sf domain.SessionFactor
}

// pending is an interactive factor the user can still complete.
func (ev evaluated) pending() bool {
	return ev.f.HasInput() && (ev.sf.State == domain.StateUnknown || ev.sf.State == domain.StateFail)
}

// blocking is a required interactive factor that locked. A sufficient
// factor can still stand in for it.
func (ev evaluated) blocking() bool {
	return ev.f.Required() && ev.sf.State == domain.StateLocked
}

// rejected is a passive factor that failed, e.g. a deny range hit. Nothing
// can override it.
func (ev evaluated) rejected() bool {
	return !ev.f.HasInput() && ev.sf.State == domain.StateFail
}

// resolve settles every factor that needs no input: passive factors are
// evaluated, interactive factors without setup become neutral and locked
// enrollments become locked. Factors disabled since the session started
// count as neutral.
func (s *LoginService) resolve(ctx context.Context, sess *domain.Session) ([]evaluated, error) {
	evs := make([]evaluated, 0, len(sess.Factors))
	for _, sf := range sess.Factors {
		f, err := s.Registry.ByName(sf.Factor)
		if errors.Is(err, factor.ErrFactorNotFound) {
			if sf.State != domain.StateNeutral {
				if err := s.setState(ctx, sess, sf.Factor, domain.StateNeutral); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		if sf.State == domain.StateUnknown || (sf.State == domain.StateFail && f.HasInput()) {
			st, err := s.evaluate(ctx, sess, f, sf)
			if err != nil {
				return nil, err
			}
			if st != sf.State {
				if err := s.setState(ctx, sess, f.Name(), st); err != nil {
					return nil, err
				}
			}
		}
		current, _ := sess.Factor(f.Name())
		evs = append(evs, evaluated{f: f, sf: current})
	}
	return evs, nil
}

func (s *LoginService) evaluate(ctx context.Context, sess *domain.Session, f factor.Factor, sf domain.SessionFactor) (domain.State, error) {
	if !f.HasInput() {
		outcome, err := f.Verify(ctx, factor.Request{UserID: sess.UserID, RemoteAddr: sess.RemoteAddr})
		if err != nil {
			return "", fmt.Errorf("evaluate %s: %w", f.Name(), err)
		}
		st := stateFor(outcome)
		if st == domain.StatePass || st == domain.StateFail {
			ev := domain.EventFactorPassed
			if st == domain.StateFail {
				ev = domain.EventFactorFailed
			}
			writeAudit(ctx, s.Store, s.now(), domain.AuditEvent{
				UserID:     sess.UserID,
				SessionID:  sess.ID,
				Factor:     f.Name(),
				Event:      ev,
				RemoteAddr: sess.RemoteAddr,
			})
		}
		return st, nil
	}

	setup, err := f.HasSetup(ctx, sess.UserID)
	if err != nil {
		return "", fmt.Errorf("check %s setup: %w", f.Name(), err)
	}
	if !setup {
		return domain.StateNeutral, nil
	}
	locked, err := s.enrollmentLocked(ctx, sess.UserID, f.Name())
	if err != nil {
		return "", err
	}
	if locked {
		return domain.StateLocked, nil
	}
	return sf.State, nil
}

func stateFor(o domain.Outcome) domain.State {
	switch o {
	case domain.OutcomePass:
		return domain.StatePass
	case domain.OutcomeFail, domain.OutcomeExpired:
		return domain.StateFail
	case domain.OutcomeLocked:
		return domain.StateLocked
	default:
		return domain.StateNeutral
	}
}

// status derives the overall session status from the factor states.
func (s *LoginService) status(evs []evaluated) domain.SessionStatus {
	for _, ev := range evs {
		if ev.rejected() {
			return domain.StatusFailed
		}
	}

	var requiredPending, requiredBlocked, sufficientUsable, anyPassed bool
	for _, ev := range evs {
		if ev.sf.State == domain.StatePass {
			if ev.f.Sufficient() {
				return domain.StatusSatisfied
			}
			anyPassed = true
		}
		if ev.blocking() {
			requiredBlocked = true
		} else if ev.f.Required() && ev.pending() {
			requiredPending = true
		}
		if ev.f.Sufficient() && ev.pending() {
			sufficientUsable = true
		}
	}

	switch {
	case requiredBlocked && !sufficientUsable:
		return domain.StatusFailed
	case requiredBlocked, requiredPending:
		return domain.StatusPending
	case s.RequireEnrollment && !anyPassed && sufficientUsable:
		return domain.StatusPending
	case s.RequireEnrollment && !anyPassed:
		return domain.StatusFailed
	default:
		return domain.StatusSatisfied
	}
}

// pick returns the first pending factor in weight order. Sufficient-only
// factors wait until no required factor is pending; once a required factor
// is blocked only sufficient factors can still help.
func pick(evs []evaluated) factor.Factor {
	var blocked, requiredPending bool
	for _, ev := range evs {
		blocked = blocked || ev.blocking()
		requiredPending = requiredPending || (ev.f.Required() && ev.pending())
	}
	for _, ev := range evs {
		if !ev.pending() {
			continue
		}
		if blocked && !ev.f.Sufficient() {
			continue
		}
		if !blocked && requiredPending && ev.f.Sufficient() && !ev.f.Required() {
			continue
		}
		return ev.f
	}
	return nil
}

// complete moves the session to its terminal status. Satisfied sessions
// reset lock counters, stamp last verification, run post-pass hooks and
// return a signed assertion.
func (s *LoginService) complete(ctx context.Context, sess *domain.Session, evs []evaluated, status domain.SessionStatus) (string, *time.Time, error) {
	now := s.now()
	passed := sess.PassedFactors()
	l := slogx.FromContext(ctx).With("session_id", sess.ID, "user_id", sess.UserID)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		done, err := tx.Sessions().CompleteSession(ctx, sess.ID, status, now)
		if err != nil {
			return err
		}
		if !done {
			return ErrSessionClosed
		}

		if status == domain.StatusFailed {
			writeAudit(ctx, tx, now, domain.AuditEvent{
				UserID:     sess.UserID,
				SessionID:  sess.ID,
				Event:      domain.EventSessionFailed,
				RemoteAddr: sess.RemoteAddr,
			})
			return nil
		}

		if err := tx.Enrollments().ResetLockCounters(ctx, sess.UserID, now); err != nil {
			return err
		}
		for _, name := range passed {
			if err := tx.Enrollments().TouchLastVerified(ctx, sess.UserID, name, now); err != nil {
				return err
			}
		}
		writeAudit(ctx, tx, now, domain.AuditEvent{
			UserID:     sess.UserID,
			SessionID:  sess.ID,
			Event:      domain.EventSessionSatisfied,
			Detail:     strings.Join(passed, ","),
			RemoteAddr: sess.RemoteAddr,
		})
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	sess.Status = status
	sess.CompletedAt = &now

	if status == domain.StatusFailed {
		l.WarnContext(ctx, "mfa session failed")
		return "", nil, nil
	}

	for _, ev := range evs {
		hook, ok := ev.f.(factor.PostPassHook)
		if !ok {
			continue
		}
		if err := hook.AfterPass(ctx, sess.UserID); err != nil {
			l.ErrorContext(ctx, "post-pass hook failed", "factor", ev.f.Name(), "err", err)
		}
	}

	ttl := s.AssertionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAssertionTTL
	}
	claims := jwtx.NewAssertionClaims(sess.UserID, sess.ID, passed, ttl, s.Issuer, s.Audience, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", nil, fmt.Errorf("sign assertion: %w", err)
	}
	exp := now.Add(ttl)

	l.InfoContext(ctx, "mfa session satisfied", "factors", passed)
	return token, &exp, nil
}
