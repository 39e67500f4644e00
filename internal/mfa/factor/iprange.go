package factor

import (
	"context"
	"net/netip"
	"strings"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

// IPRange is a passive factor: a remote address inside a deny range fails,
// inside an allow range passes, anything else is not applicable.
type IPRange struct {
	base
	deps Deps
}

// NewIPRange builds the IP range factor.
func NewIPRange(deps Deps, cfg Config) (Factor, error) {
	return &IPRange{
		base: base{name: domain.FactorIPRange, cfg: cfg, hasInput: false},
		deps: deps,
	}, nil
}

func (f *IPRange) HasSetup(ctx context.Context, _ string) (bool, error) {
	ranges, err := f.deps.Store.IPRanges().ListIPRanges(ctx, true)
	if err != nil {
		return false, err
	}
	return len(ranges) > 0, nil
}

func (f *IPRange) PossibleStates(ctx context.Context, userID string) ([]domain.State, error) {
	ok, err := f.HasSetup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.State{domain.StateNeutral}, nil
	}
	return []domain.State{domain.StatePass, domain.StateFail, domain.StateNeutral}, nil
}

func (f *IPRange) Verify(ctx context.Context, req Request) (domain.Outcome, error) {
	addr, ok := ParseRemoteAddr(req.RemoteAddr)
	if !ok {
		return domain.OutcomeNotApplicable, nil
	}

	ranges, err := f.deps.Store.IPRanges().ListIPRanges(ctx, true)
	if err != nil {
		return "", err
	}

	allowed := false
	for _, r := range ranges {
		prefix, err := netip.ParsePrefix(r.CIDR)
		if err != nil {
			f.deps.Logger.WarnContext(ctx, "skipping malformed ip range", "id", r.ID, "cidr", r.CIDR)
			continue
		}
		if !prefix.Contains(addr) {
			continue
		}
		if r.Kind == domain.IPRangeDeny {
			return domain.OutcomeFail, nil
		}
		allowed = true
	}
	if allowed {
		return domain.OutcomePass, nil
	}
	return domain.OutcomeNotApplicable, nil
}

// ParseRemoteAddr accepts a bare address or host:port and unmaps IPv4
// addresses carried in IPv6.
func ParseRemoteAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.Unmap(), true
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}

// ParseCIDR validates and canonicalises a range. A bare address becomes a
// single-host range.
func ParseCIDR(s string) (string, error) {
	s = strings.TrimSpace(s)
	if addr, err := netip.ParseAddr(s); err == nil {
		addr = addr.Unmap()
		return netip.PrefixFrom(addr, addr.BitLen()).String(), nil
	}
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return "", err
	}
	return prefix.Masked().String(), nil
}
