package domain

import "time"

type IPRangeKind string

const (
	IPRangeAllow IPRangeKind = "allow"
	IPRangeDeny  IPRangeKind = "deny"
)

// Valid reports whether k is a known kind.
func (k IPRangeKind) Valid() bool {
	return k == IPRangeAllow || k == IPRangeDeny
}

// IPRange is an allow or deny CIDR consulted by the passive IP range factor.
type IPRange struct {
	ID          string      `json:"id"`
	CIDR        string      `json:"cidr"`
	Kind        IPRangeKind `json:"kind"`
	Description string      `json:"description,omitempty"`
	Enabled     bool        `json:"enabled"`
	CreatedAt   time.Time   `json:"created_at"`
}
