// Package currency converts between currencies using a static USD-based rate
// table. The sample keeps rates fixed; a production system would pull them
// from a market data feed.
package currency

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voltdata/evagent/internal/errors"
)

// usdRates holds units of each currency per one US dollar.
var usdRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.50,
	"CAD": 1.36,
	"AUD": 1.52,
	"CHF": 0.88,
	"INR": 83.10,
	"CNY": 7.24,
	"KRW": 1330.00,
}

// Converter converts amounts between supported currencies.
type Converter struct {
	rates map[string]float64
}

// NewConverter creates a converter backed by the static rate table.
func NewConverter() *Converter {
	return &Converter{rates: usdRates}
}

// Supported returns the supported currency codes.
func (c *Converter) Supported() []string {
	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		codes = append(codes, code)
	}

	return codes
}

// Convert converts amount from one currency to another, routing through USD.
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := c.rates[strings.ToUpper(strings.TrimSpace(from))]
	if !ok {
		return 0, errors.Newf(errors.ErrTypeInvalidFilter,
			"unsupported currency code %q", from)
	}

	toRate, ok := c.rates[strings.ToUpper(strings.TrimSpace(to))]
	if !ok {
		return 0, errors.Newf(errors.ErrTypeInvalidFilter,
			"unsupported currency code %q", to)
	}

	return amount / fromRate * toRate, nil
}

// ConvertString parses the amount and converts it, returning a formatted
// sentence for the agent.
func (c *Converter) ConvertString(rawAmount, from, to string) (string, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(rawAmount), 64)
	if err != nil {
		return "", errors.Newf(errors.ErrTypeInvalidFilter,
			"amount %q is not a number", rawAmount)
	}

	converted, err := c.Convert(amount, from, to)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%.2f %s = %.2f %s", amount,
		strings.ToUpper(strings.TrimSpace(from)), converted,
		strings.ToUpper(strings.TrimSpace(to))), nil
}
