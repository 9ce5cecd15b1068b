package models

// Currency is an ISO 4217 code from the fixed set the service tracks.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	CHF Currency = "CHF"
	NZD Currency = "NZD"
	CNY Currency = "CNY"
)

// BaseCurrency is the reference currency and the lossy fallback for unresolvable input.
const BaseCurrency = USD

// AllCurrencies lists the supported currencies in their canonical order.
var AllCurrencies = []Currency{USD, EUR, GBP, JPY, AUD, CAD, CHF, NZD, CNY}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	for _, k := range AllCurrencies {
		if c == k {
			return true
		}
	}
	return false
}

func (c Currency) String() string { return string(c) }
