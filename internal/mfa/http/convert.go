package http

import (
	"github.com/nexosupport/nexomfa/internal/mfa/domain"
	"github.com/nexosupport/nexomfa/internal/mfa/factor"
	"github.com/nexosupport/nexomfa/internal/mfa/service"
	"github.com/nexosupport/nexomfa/pkg/mfasdk"
)

func toDescriptor(f factor.Factor) mfasdk.FactorDescriptor {
	d := f.Descriptor()
	return mfasdk.FactorDescriptor{
		Name:       d.Name,
		Weight:     d.Weight,
		HasInput:   d.HasInput,
		Required:   d.Required,
		Sufficient: d.Sufficient,
	}
}

func toSession(s domain.Session) mfasdk.SessionResponse {
	out := mfasdk.SessionResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		ExpiresAt:   s.ExpiresAt,
		CompletedAt: s.CompletedAt,
		Factors:     make([]mfasdk.SessionFactorState, 0, len(s.Factors)),
	}
	for _, f := range s.Factors {
		out.Factors = append(out.Factors, mfasdk.SessionFactorState{
			Factor:   f.Factor,
			State:    string(f.State),
			Attempts: f.Attempts,
		})
	}
	return out
}

func toDelivery(d *domain.Delivery) *mfasdk.Delivery {
	if d == nil {
		return nil
	}
	return &mfasdk.Delivery{
		Factor:      d.Factor,
		Destination: d.Destination,
		ExpiresAt:   d.ExpiresAt,
	}
}

func toNextFactor(step service.NextStep) mfasdk.NextFactorResponse {
	return mfasdk.NextFactorResponse{
		SessionID:          step.Session.ID,
		Status:             string(step.Session.Status),
		Done:               step.Factor.Name() == domain.FactorFallback,
		Factor:             toDescriptor(step.Factor),
		Delivery:           toDelivery(step.Delivery),
		Throttled:          step.Throttled,
		Assertion:          step.Assertion,
		AssertionExpiresAt: step.AssertionExpiresAt,
	}
}

func toVerify(r domain.VerifyResult) mfasdk.VerifyResponse {
	return mfasdk.VerifyResponse{
		SessionID:          r.SessionID,
		Factor:             r.Factor,
		Outcome:            string(r.Outcome),
		State:              string(r.State),
		Status:             string(r.Status),
		Attempts:           r.Attempts,
		RemainingAttempts:  r.Remaining,
		Assertion:          r.Assertion,
		AssertionExpiresAt: r.AssertionAt,
	}
}

func toUserFactor(f domain.UserFactor) mfasdk.UserFactor {
	return mfasdk.UserFactor{
		Factor:         f.Factor,
		Label:          f.Label,
		Destination:    f.Destination,
		Confirmed:      f.Confirmed,
		Locked:         f.Locked,
		LockCounter:    f.LockCounter,
		Remaining:      f.Remaining,
		LastVerifiedAt: f.LastVerifiedAt,
		CreatedAt:      f.CreatedAt,
	}
}

func toAuditEvent(e domain.AuditEvent) mfasdk.AuditEvent {
	return mfasdk.AuditEvent{
		ID:         e.ID,
		UserID:     e.UserID,
		SessionID:  e.SessionID,
		Factor:     e.Factor,
		Event:      e.Event,
		Detail:     e.Detail,
		RemoteAddr: e.RemoteAddr,
		CreatedAt:  e.CreatedAt,
	}
}

func toIPRange(r domain.IPRange) mfasdk.IPRange {
	return mfasdk.IPRange{
		ID:          r.ID,
		CIDR:        r.CIDR,
		Kind:        string(r.Kind),
		Description: r.Description,
		Enabled:     r.Enabled,
		CreatedAt:   r.CreatedAt,
	}
}
