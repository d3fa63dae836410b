package ledger

import (
	"strconv"
	"strings"
)

// shippingMarkers are matched case-insensitively as substrings of an item
// description to detect shipping-related lines.
var shippingMarkers = []string{"shipping", "ship", "postage", "delivery"}

// ToAmount converts a raw cell value to a float amount. Missing, empty and
// unparseable values all become 0; currency symbols and thousands separators
// are stripped first. It never fails.
func ToAmount(value string) float64 {
	clean := strings.TrimSpace(value)
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)

	if clean == "" || strings.EqualFold(clean, "nan") {
		return 0
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}

	return f
}

// IsValidCustomerName reports whether a raw cell value is a usable customer
// name. Empty, whitespace-only, nan/none/null placeholders and purely
// numeric values are rejected.
func IsValidCustomerName(value string) bool {
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "" || name == "nan" || name == "none" || name == "null" {
		return false
	}

	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return false
	}

	return true
}

// IsShippingLine reports whether an item description refers to shipping,
// postage or delivery.
func IsShippingLine(value string) bool {
	item := strings.ToLower(strings.TrimSpace(value))
	if item == "" {
		return false
	}

	for _, marker := range shippingMarkers {
		if strings.Contains(item, marker) {
			return true
		}
	}

	return false
}

// IsSummaryRow reports whether a row is a "Total ..." subtotal line rather
// than a transaction. A row with a non-empty type field is never a summary
// row regardless of its customer field.
func IsSummaryRow(row Row, customerCol, typeCol int) bool {
	if typeCol >= 0 && strings.TrimSpace(row.Cell(typeCol)) != "" {
		return false
	}

	if customerCol < 0 {
		return false
	}

	return strings.HasPrefix(strings.TrimSpace(row.Cell(customerCol)), "Total ")
}
