package domain

import "time"

// EntitlementWindow is how long a completed payment unlocks the export.
const EntitlementWindow = 24 * time.Hour

// PaymentEntitlement records a successful payment for the export.
// Granted implies GrantedAt is set.
type PaymentEntitlement struct {
	Granted   bool
	GrantedAt time.Time
}

// Grant marks the entitlement as granted at the given time.
func (p *PaymentEntitlement) Grant(at time.Time) error {
	if at.IsZero() {
		return ErrEntitlementTimestamp
	}
	p.Granted = true
	p.GrantedAt = at
	return nil
}

// Clear revokes the entitlement.
func (p *PaymentEntitlement) Clear() {
	*p = PaymentEntitlement{}
}

// ValidAt reports whether the entitlement is granted and younger than window at now.
func (p PaymentEntitlement) ValidAt(now time.Time, window time.Duration) bool {
	if !p.Granted || p.GrantedAt.IsZero() {
		return false
	}
	return now.Sub(p.GrantedAt) < window
}

// Expired reports whether a granted entitlement has outlived window.
func (p PaymentEntitlement) Expired(now time.Time, window time.Duration) bool {
	return p.Granted && !p.ValidAt(now, window)
}
