package xrpl

import "testing"

func TestClassifyNodeVariants(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want DiffKind
	}{
		{"created", "CreatedNode", DiffCreated},
		{"modified", "ModifiedNode", DiffModified},
		{"deleted", "DeletedNode", DiffDeleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := map[string]any{
				tc.key: map[string]any{"LedgerEntryType": "Offer"},
			}
			d, ok := classifyNode(raw)
			if !ok {
				t.Fatalf("classify failed")
			}
			if d.Kind != tc.want {
				t.Fatalf("kind = %v, want %v", d.Kind, tc.want)
			}
			if !d.IsOffer() {
				t.Fatalf("expected offer entry")
			}
		})
	}
}

func TestClassifyNodeFieldBlockSelection(t *testing.T) {
	created, ok := classifyNode(map[string]any{
		"CreatedNode": map[string]any{
			"LedgerEntryType": "Offer",
			"NewFields":       map[string]any{"Account": "rA"},
		},
	})
	if !ok || created.Fields["Account"] != "rA" {
		t.Fatalf("created diff did not read NewFields: %+v", created)
	}

	modified, ok := classifyNode(map[string]any{
		"ModifiedNode": map[string]any{
			"LedgerEntryType":   "Offer",
			"FinalFields":       map[string]any{"Account": "rB"},
			"PreviousFields":    map[string]any{"TakerGets": "10"},
			"PreviousTxnID":     "ABCD",
			"PreviousTxnLgrSeq": 7123.0,
		},
	})
	if !ok || modified.Fields["Account"] != "rB" {
		t.Fatalf("modified diff did not read FinalFields: %+v", modified)
	}
	if modified.PrevTxnID != "ABCD" || modified.PrevTxnLgrSeq != "7123" {
		t.Fatalf("linkage not decoded: %+v", modified)
	}
	if modified.PreviousFields["TakerGets"] != "10" {
		t.Fatalf("previous fields not decoded: %+v", modified)
	}
}

func TestClassifyNodeNonOffer(t *testing.T) {
	d, ok := classifyNode(map[string]any{
		"ModifiedNode": map[string]any{"LedgerEntryType": "AccountRoot"},
	})
	if !ok {
		t.Fatalf("classify failed")
	}
	if d.IsOffer() {
		t.Fatalf("AccountRoot classified as offer")
	}
}

func TestClassifyNodeUnrecognized(t *testing.T) {
	for _, raw := range []any{nil, "x", map[string]any{}, map[string]any{"Other": 1}} {
		if _, ok := classifyNode(raw); ok {
			t.Fatalf("classified %#v, want skip", raw)
		}
	}
}
