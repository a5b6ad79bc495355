package session

import (
	"time"

	"github.com/phrazzld/study-buddy/internal/domain"
)

// Storage keys for the payment entitlement.
const (
	KeyPaymentValid = "paymentValid"
	KeyPaymentTime  = "paymentTime"
)

// Options tunes controller behavior. Zero fields take DefaultOptions values.
type Options struct {
	// MinNotesLength is the minimum trimmed note length, in characters.
	MinNotesLength int
	// ChargeAmount is sent to the payment gateway.
	ChargeAmount float64
	// EntitlementWindow is how long a payment unlocks the export.
	EntitlementWindow time.Duration
	// DateLayout formats the "Generated on" export line.
	DateLayout string
}

// DefaultOptions are the reference product settings.
var DefaultOptions = Options{
	MinNotesLength:    50,
	ChargeAmount:      1.00,
	EntitlementWindow: domain.EntitlementWindow,
	DateLayout:        "1/2/2006",
}

func (o Options) withDefaults() Options {
	if o.MinNotesLength <= 0 {
		o.MinNotesLength = DefaultOptions.MinNotesLength
	}
	if o.ChargeAmount <= 0 {
		o.ChargeAmount = DefaultOptions.ChargeAmount
	}
	if o.EntitlementWindow <= 0 {
		o.EntitlementWindow = DefaultOptions.EntitlementWindow
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultOptions.DateLayout
	}
	return o
}
