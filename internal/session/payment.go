package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/events"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/redact"
	"github.com/phrazzld/study-buddy/internal/store"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+?254|0)?[17]\d{8}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// contactDetails is the payment form.
type contactDetails struct {
	Email string `validate:"required,contact_email"`
	Phone string `validate:"required,contact_phone"`
}

// NormalizePhone removes all whitespace from a phone number.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}

// ValidateContact checks payment contact details and returns the normalized
// email and phone.
func ValidateContact(email, phone string) (string, string, error) {
	in := contactDetails{
		Email: strings.TrimSpace(email),
		Phone: NormalizePhone(phone),
	}
	if in.Email == "" || in.Phone == "" {
		return "", "", domain.ErrContactRequired
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Email":
				return "", "", domain.NewValidationError("email", "must be a valid email address", domain.ErrInvalidEmail)
			case "Phone":
				return "", "", domain.NewValidationError("phone", "must be a valid phone number", domain.ErrInvalidPhone)
			}
		}
		return "", "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return in.Email, in.Phone, nil
}

// CompletePayment validates the contact details, charges the gateway and, on
// success, grants and persists the export entitlement. A failed payment leaves
// any existing entitlement unchanged.
func (c *Controller) CompletePayment(ctx context.Context, email, phone string) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	email, phone, err := ValidateContact(email, phone)
	if err != nil {
		return err
	}
	if c.state.Deck.Empty() {
		return domain.ErrNoCards
	}

	res, err := c.payments.Charge(ctx, domain.ChargeRequest{
		Email:          email,
		Phone:          phone,
		Amount:         c.opts.ChargeAmount,
		FlashcardCount: c.state.Deck.Len(),
	})
	if err != nil {
		var se *domain.ServiceError
		if errors.As(err, &se) {
			err = &domain.PaymentError{Reason: fmt.Sprintf("Payment failed: %d", se.StatusCode)}
		}
		log.Warn("payment failed", "error", redact.Error(err))
		c.emit(ctx, events.TypePaymentFailed, nil)
		return err
	}
	if res == nil || !res.Success {
		reason := "Payment processing failed"
		if res != nil && res.Message != "" {
			reason = res.Message
		}
		log.Warn("payment declined", "reason", redact.String(reason))
		c.emit(ctx, events.TypePaymentFailed, nil)
		return &domain.PaymentError{Reason: reason}
	}

	now := c.now()
	if err := c.state.Entitlement.Grant(now); err != nil {
		return err
	}
	c.persistEntitlement(ctx, now.UnixMilli())

	log.Info("payment completed", "amount", c.opts.ChargeAmount, "cards", c.state.Deck.Len())
	c.emit(ctx, events.TypePaymentCompleted, map[string]any{"amount": c.opts.ChargeAmount})
	return nil
}

// persistEntitlement writes the entitlement keys. Failures are logged only:
// the in-memory entitlement stays valid for this session.
func (c *Controller) persistEntitlement(ctx context.Context, grantedAtMillis int64) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	if err := c.storage.Set(ctx, KeyPaymentValid, "true"); err != nil {
		log.Error("failed to persist entitlement", "key", KeyPaymentValid, "error", redact.Error(err))
		return
	}
	if err := c.storage.Set(ctx, KeyPaymentTime, strconv.FormatInt(grantedAtMillis, 10)); err != nil {
		log.Error("failed to persist entitlement", "key", KeyPaymentTime, "error", redact.Error(err))
	}
}

// clearEntitlement revokes the entitlement in memory and in storage.
func (c *Controller) clearEntitlement(ctx context.Context) {
	c.state.Entitlement.Clear()
	if err := c.storage.Delete(ctx, KeyPaymentValid, KeyPaymentTime); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to clear entitlement keys", "error", redact.Error(err))
	}
}

// RestoreEntitlement reads a previously persisted entitlement from storage.
// An entitlement younger than the window is granted; an expired or corrupt
// one is deleted. It is meant to run once when the session starts.
func (c *Controller) RestoreEntitlement(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	valid, err := c.storage.Get(ctx, KeyPaymentValid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", KeyPaymentValid, err)
	}
	raw, err := c.storage.Get(ctx, KeyPaymentTime)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", KeyPaymentTime, err)
	}
	if valid != "true" {
		return nil
	}

	millis, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		log.Warn("discarding unreadable entitlement timestamp", "value", raw)
		c.clearEntitlement(ctx)
		return nil
	}

	grantedAt := time.UnixMilli(millis)
	if c.now().Sub(grantedAt) >= c.opts.EntitlementWindow {
		log.Info("stored entitlement expired", "granted_at", grantedAt)
		c.clearEntitlement(ctx)
		c.emit(ctx, events.TypeEntitlementExpired, nil)
		return nil
	}

	if err := c.state.Entitlement.Grant(grantedAt); err != nil {
		return err
	}
	log.Info("entitlement restored", "granted_at", grantedAt)
	return nil
}

// ExportOutcome is the result of RequestExport.
type ExportOutcome int

// Export outcomes.
const (
	ExportAllowed ExportOutcome = iota + 1
	ExportRequiresPayment
	ExportBlocked
)

func (o ExportOutcome) String() string {
	switch o {
	case ExportAllowed:
		return "allowed"
	case ExportRequiresPayment:
		return "requires_payment"
	case ExportBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// ExportDecision says whether the export may proceed. Reason is set when
// Outcome is ExportBlocked.
type ExportDecision struct {
	Outcome ExportOutcome
	Reason  error
}

// RequestExport checks whether the deck may be exported now. An expired
// entitlement is cleared, including its storage keys.
func (c *Controller) RequestExport(ctx context.Context) ExportDecision {
	if c.state.Deck.Empty() {
		return ExportDecision{Outcome: ExportBlocked, Reason: domain.ErrNoCards}
	}

	now := c.now()
	if c.state.Entitlement.ValidAt(now, c.opts.EntitlementWindow) {
		return ExportDecision{Outcome: ExportAllowed}
	}
	if c.state.Entitlement.Expired(now, c.opts.EntitlementWindow) {
		logger.FromContextOrDefault(ctx, c.logger).Info("entitlement expired",
			"granted_at", c.state.Entitlement.GrantedAt)
		c.clearEntitlement(ctx)
		c.emit(ctx, events.TypeEntitlementExpired, nil)
	}
	return ExportDecision{Outcome: ExportRequiresPayment}
}

// Entitlement returns the current payment entitlement.
func (c *Controller) Entitlement() domain.PaymentEntitlement {
	return c.state.Entitlement
}
