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
	"github.com/nexosupport/nexomfa/pkg/idx"
	"github.com/nexosupport/nexomfa/pkg/slogx"
)

// IPRangeService administers the allow and deny lists used by the ip range
// factor.
type IPRangeService struct {
	Store store.Store
	Now   func() time.Time
}

type CreateIPRangeInput struct {
	CIDR        string
	Kind        domain.IPRangeKind
	Description string
	Enabled     bool
}

func (s *IPRangeService) List(ctx context.Context) ([]domain.IPRange, error) {
	return s.Store.IPRanges().ListIPRanges(ctx, false)
}

func (s *IPRangeService) Create(ctx context.Context, in CreateIPRangeInput) (domain.IPRange, error) {
	cidr, err := factor.ParseCIDR(in.CIDR)
	if err != nil {
		return domain.IPRange{}, fmt.Errorf("%w: invalid cidr", ErrInvalidRequest)
	}
	if !in.Kind.Valid() {
		return domain.IPRange{}, fmt.Errorf("%w: kind must be allow or deny", ErrInvalidRequest)
	}

	now := utcNow()
	if s.Now != nil {
		now = s.Now()
	}
	r := domain.IPRange{
		ID:          idx.NewAt(now).String(),
		CIDR:        cidr,
		Kind:        in.Kind,
		Description: strings.TrimSpace(in.Description),
		Enabled:     in.Enabled,
		CreatedAt:   now,
	}
	err = s.Store.IPRanges().CreateIPRange(ctx, r)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.IPRange{}, ErrIPRangeExists
	}
	if err != nil {
		return domain.IPRange{}, err
	}

	slogx.FromContext(ctx).InfoContext(ctx, "ip range created", "id", r.ID, "cidr", r.CIDR, "kind", r.Kind)
	return r, nil
}

func (s *IPRangeService) Delete(ctx context.Context, id string) error {
	err := s.Store.IPRanges().DeleteIPRange(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrIPRangeNotFound
	}
	return err
}
