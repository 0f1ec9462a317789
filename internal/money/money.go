// Package money formats prices for display. The storefront handles a single
// currency; only the number grouping follows the configured locale.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type Formatter struct {
	printer *message.Printer
}

// NewFormatter falls back to es-AR when locale does not parse.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse("es-AR")
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format shows at most three decimals, trailing zeros dropped.
func (f *Formatter) Format(v float64) string {
	return f.printer.Sprintf("$ %v", number.Decimal(v, number.MaxFractionDigits(3)))
}
