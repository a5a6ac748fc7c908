package utils

import (
	"regexp"
	"strings"
)

var (
	alphaRe      = regexp.MustCompile(`[A-Za-z]`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

func stripAndCollapse(value string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
}

// NormalizeBarcode returns the canonical representation of a barcode value.
// Numeric codes are stripped of punctuation and 12-digit UPC-A values are
// zero-padded to their 13-digit EAN form; alphanumeric codes are upper-cased.
// Empty input normalizes to "".
func NormalizeBarcode(raw string) string {
	cleaned := stripAndCollapse(raw)
	if cleaned == "" {
		return ""
	}

	if !alphaRe.MatchString(cleaned) {
		digits := nonDigitRe.ReplaceAllString(cleaned, "")
		if digits != "" {
			if len(digits) == 12 {
				digits = "0" + digits
			}
			return digits
		}
	}

	return strings.ToUpper(cleaned)
}

// BarcodeAliases returns every variant of a barcode that should be treated as
// equivalent when looking up hardware: the canonical form, the raw digit
// string, the 12/13-digit leading-zero counterparts, and the upper-cased raw
// value. Lookups try each alias in order.
func BarcodeAliases(raw string) []string {
	cleaned := stripAndCollapse(raw)
	if cleaned == "" {
		return nil
	}

	var aliases []string
	seen := make(map[string]bool)
	add := func(candidate string) {
		if candidate == "" || seen[candidate] {
			return
		}
		seen[candidate] = true
		aliases = append(aliases, candidate)
	}

	add(NormalizeBarcode(cleaned))

	if !alphaRe.MatchString(cleaned) {
		digits := nonDigitRe.ReplaceAllString(cleaned, "")
		if digits != "" {
			add(digits)
			if len(digits) == 12 {
				add("0" + digits)
			}
			if len(digits) == 13 && strings.HasPrefix(digits, "0") {
				add(digits[1:])
			}
		}
	}

	add(strings.ToUpper(cleaned))

	return aliases
}
