package checkout

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// Form is the customer input submitted at checkout.
type Form struct {
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	Address       string               `json:"address"`
	PaymentMethod domain.PaymentMethod `json:"method"`
	CardNumber    string               `json:"card_number,omitempty"`
	CVV           string               `json:"cvv,omitempty"`
}

func (f Form) normalized() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	f.PaymentMethod = domain.PaymentMethod(strings.TrimSpace(string(f.PaymentMethod)))
	f.CardNumber = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, f.CardNumber)
	f.CVV = strings.TrimSpace(f.CVV)
	return f
}

// Validate checks a normalized form.
func (f Form) Validate() error {
	var missing []string
	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Email == "" {
		missing = append(missing, "email")
	}
	if f.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	if !f.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, f.PaymentMethod)
	}
	if f.PaymentMethod == domain.PaymentCard {
		if !cardNumberPattern.MatchString(f.CardNumber) || !cvvPattern.MatchString(f.CVV) {
			return fmt.Errorf("%w: card number needs 16 digits and CVV 3 or 4 digits", domain.ErrInvalidPaymentDetails)
		}
	}
	return nil
}
