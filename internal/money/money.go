// Package money форматирует суммы в минимальных единицах для ответов API.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies: валюты без дробной части (Stripe передаёт их суммы как есть).
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// Exponent возвращает число знаков после запятой для валюты.
func Exponent(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(currency)]; ok {
		return 0
	}
	return 2
}

// FromMinor переводит сумму в минимальных единицах в десятичное значение.
func FromMinor(amountMinor int64, currency string) decimal.Decimal {
	return decimal.New(amountMinor, -Exponent(currency))
}

// Format возвращает сумму строкой с фиксированным числом знаков: 2500 usd -> "25.00".
func Format(amountMinor int64, currency string) string {
	return FromMinor(amountMinor, currency).StringFixed(Exponent(currency))
}
