package statement

import "testing"

func TestMapHeaders(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  map[Field]int
	}{
		{
			name:  "classic debit credit layout",
			cells: []string{"Date", "Description", "Debit", "Credit", "Balance"},
			want: map[Field]int{
				FieldDate: 0, FieldMerchant: 1, FieldDebit: 2,
				FieldCredit: 3, FieldBalance: 4,
			},
		},
		{
			name:  "single amount with type",
			cells: []string{"Txn Date", "Particulars", "Type", "Amount"},
			want: map[Field]int{
				FieldDate: 0, FieldMerchant: 1, FieldType: 2, FieldAmount: 3,
			},
		},
		{
			name:  "dr cr abbreviations match as words",
			cells: []string{"Date", "Narration", "Dr", "Cr"},
			want: map[Field]int{
				FieldDate: 0, FieldMerchant: 1, FieldDebit: 2, FieldCredit: 3,
			},
		},
		{
			name:  "cr does not hit description",
			cells: []string{"Description", "Withdrawal", "Deposit"},
			want: map[Field]int{
				FieldMerchant: 0, FieldDebit: 1, FieldCredit: 2,
			},
		},
		{
			name:  "case insensitive",
			cells: []string{"DATE", "TRANSACTION DETAILS", "DEBIT AMOUNT", "CREDIT AMOUNT"},
			want: map[Field]int{
				FieldDate: 0, FieldMerchant: 1, FieldDebit: 2,
				FieldCredit: 3, FieldAmount: 2,
			},
		},
		{
			name:  "no matches",
			cells: []string{"Foo", "Bar", "Baz"},
			want:  map[Field]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapHeaders(tt.cells)
			if len(got) != len(tt.want) {
				t.Fatalf("MapHeaders(%v) = %v, want %v", tt.cells, got, tt.want)
			}
			for field, idx := range tt.want {
				if got[field] != idx {
					t.Errorf("field %s = %d, want %d", field, got[field], idx)
				}
			}
		})
	}
}

func TestHeaderMappingUsable(t *testing.T) {
	if (HeaderMapping{FieldBalance: 0}).usable() {
		t.Error("balance-only mapping must not be usable")
	}
	if !(HeaderMapping{FieldDate: 0}).usable() {
		t.Error("date mapping must be usable")
	}
	if !(HeaderMapping{FieldAmount: 2}).usable() {
		t.Error("amount mapping must be usable")
	}
}

func TestHeaderMappingCellOutOfRange(t *testing.T) {
	m := HeaderMapping{FieldAmount: 5}
	if got := m.cell([]string{"only", "two"}, FieldAmount); got != "" {
		t.Errorf("out-of-range cell = %q, want empty", got)
	}
}
