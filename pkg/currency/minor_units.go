package currency

import "math"

// DefaultDecimals is the number of minor-unit digits assumed for
// currencies not present in the ISO 4217 minor-unit table.
const DefaultDecimals = 2

// ISO 4217 currencies without a minor unit.
var zeroDecimal = map[Code]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "ISK": {}, "JPY": {},
	"KMF": {}, "KRW": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// ISO 4217 currencies with a thousandth minor unit.
var threeDecimal = map[Code]struct{}{
	"BHD": {}, "IQD": {}, "JOD": {}, "KWD": {}, "LYD": {}, "OMR": {}, "TND": {},
}

// MinorUnits returns the number of minor-unit digits for a currency,
// falling back to DefaultDecimals for unknown codes.
func MinorUnits(c Code) int {
	if _, ok := zeroDecimal[c]; ok {
		return 0
	}
	if _, ok := threeDecimal[c]; ok {
		return 3
	}
	return DefaultDecimals
}

// Round rounds an amount to the currency's smallest standard
// subdivision (e.g., cents for USD, whole yen for JPY).
func Round(amount float64, c Code) float64 {
	pow := math.Pow10(MinorUnits(c))
	return math.Round(amount*pow) / pow
}
