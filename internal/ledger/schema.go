package ledger

import "strings"

// Logical fields of a ledger export.
const (
	FieldType     = "type"
	FieldDate     = "date"
	FieldCustomer = "customer"
	FieldAmount   = "amount"
	FieldItem     = "item"
	FieldNum      = "num"
	FieldQty      = "qty"
)

// Absent marks a logical field with no physical column.
const Absent = -1

// canonicalHeaders maps each logical field to the header name accounting
// exports use when headers are present. Matching is case-insensitive.
var canonicalHeaders = map[string]string{
	FieldType:     "Type",
	FieldDate:     "Date",
	FieldCustomer: "Name",
	FieldAmount:   "Amount",
	FieldItem:     "Item",
	FieldNum:      "Num",
	FieldQty:      "Qty",
}

// positionalFallback holds the fixed zero-based column offsets used when an
// export ships without recognizable headers. Qty has no documented offset
// and resolves by name only.
var positionalFallback = map[string]int{
	FieldType:     3,
	FieldDate:     6,
	FieldNum:      8,
	FieldCustomer: 12,
	FieldItem:     14,
	FieldAmount:   20,
}

// Mapping associates logical fields with physical column indices in a loaded
// table. Resolved once per load and constant afterwards.
type Mapping struct {
	Type     int
	Date     int
	Customer int
	Amount   int
	Item     int
	Num      int
	Qty      int
}

// Column returns the column index for a logical field name.
func (m Mapping) Column(field string) int {
	switch field {
	case FieldType:
		return m.Type
	case FieldDate:
		return m.Date
	case FieldCustomer:
		return m.Customer
	case FieldAmount:
		return m.Amount
	case FieldItem:
		return m.Item
	case FieldNum:
		return m.Num
	case FieldQty:
		return m.Qty
	}

	return Absent
}

// Resolve infers the column mapping for a loaded table. Each field is first
// matched by canonical header name (exact, case-insensitive); fields still
// unmatched fall back to their fixed positional offset when the table is
// wide enough to reach it. Anything else resolves to Absent.
func Resolve(table *Table) Mapping {
	resolve := func(field string) int {
		want := canonicalHeaders[field]
		for i, h := range table.Headers {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}

		if pos, ok := positionalFallback[field]; ok && len(table.Headers) > pos {
			return pos
		}

		return Absent
	}

	return Mapping{
		Type:     resolve(FieldType),
		Date:     resolve(FieldDate),
		Customer: resolve(FieldCustomer),
		Amount:   resolve(FieldAmount),
		Item:     resolve(FieldItem),
		Num:      resolve(FieldNum),
		Qty:      resolve(FieldQty),
	}
}
