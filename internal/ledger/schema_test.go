package ledger

import "testing"

func TestResolve_ByHeaderName(t *testing.T) {
	table := &Table{Headers: []string{"Type", "Date", "Num", "Name", "Amount", "Item", "Qty"}}

	m := Resolve(table)

	if m.Type != 0 || m.Date != 1 || m.Num != 2 || m.Customer != 3 || m.Amount != 4 || m.Item != 5 || m.Qty != 6 {
		t.Errorf("unexpected mapping: %+v", m)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	table := &Table{Headers: []string{"date", "NAME", "amount"}}

	m := Resolve(table)

	if m.Date != 0 {
		t.Errorf("Date = %d, want 0", m.Date)
	}
	if m.Customer != 1 {
		t.Errorf("Customer = %d, want 1", m.Customer)
	}
	if m.Amount != 2 {
		t.Errorf("Amount = %d, want 2", m.Amount)
	}
}

func TestResolve_PositionalFallback(t *testing.T) {
	// 21 anonymous columns: everything resolves by fixed position.
	headers := make([]string, 21)
	for i := range headers {
		headers[i] = "col"
	}

	m := Resolve(&Table{Headers: headers})

	if m.Type != 3 {
		t.Errorf("Type = %d, want 3", m.Type)
	}
	if m.Date != 6 {
		t.Errorf("Date = %d, want 6", m.Date)
	}
	if m.Num != 8 {
		t.Errorf("Num = %d, want 8", m.Num)
	}
	if m.Customer != 12 {
		t.Errorf("Customer = %d, want 12", m.Customer)
	}
	if m.Item != 14 {
		t.Errorf("Item = %d, want 14", m.Item)
	}
	if m.Amount != 20 {
		t.Errorf("Amount = %d, want 20", m.Amount)
	}

	// Qty has no positional fallback.
	if m.Qty != Absent {
		t.Errorf("Qty = %d, want Absent", m.Qty)
	}
}

func TestResolve_NarrowTable(t *testing.T) {
	// Three unnamed columns: no field is reachable by name or position.
	m := Resolve(&Table{Headers: []string{"a", "b", "c"}})

	if m.Date != Absent || m.Customer != Absent || m.Amount != Absent {
		t.Errorf("expected absent fields, got %+v", m)
	}
}

func TestResolve_MixedNameAndPosition(t *testing.T) {
	// Date present by name; amount only reachable positionally.
	headers := make([]string, 21)
	for i := range headers {
		headers[i] = "x"
	}
	headers[2] = "Date"

	m := Resolve(&Table{Headers: headers})

	if m.Date != 2 {
		t.Errorf("Date = %d, want 2 (name match wins over position)", m.Date)
	}
	if m.Amount != 20 {
		t.Errorf("Amount = %d, want 20", m.Amount)
	}
}

func TestMappingColumn(t *testing.T) {
	m := Mapping{Date: 4, Customer: Absent}

	if got := m.Column(FieldDate); got != 4 {
		t.Errorf("Column(date) = %d, want 4", got)
	}
	if got := m.Column(FieldCustomer); got != Absent {
		t.Errorf("Column(customer) = %d, want Absent", got)
	}
	if got := m.Column("bogus"); got != Absent {
		t.Errorf("Column(bogus) = %d, want Absent", got)
	}
}
