package xrpl

// DiffKind is the variant of one affected-node diff.
type DiffKind int

const (
	DiffCreated DiffKind = iota
	DiffModified
	DiffDeleted
)

func (k DiffKind) String() string {
	switch k {
	case DiffCreated:
		return "created-node"
	case DiffModified:
		return "modified-node"
	default:
		return "deleted-node"
	}
}

// entryTypeOffer is the ledger entry type for order-book entries. Diffs
// over any other entry type are not normalization candidates.
const entryTypeOffer = "Offer"

// NodeDiff is one AffectedNodes element decoded into its single variant.
// Fields holds the block consulted for offer fields: NewFields for created
// diffs, FinalFields otherwise. The variant-level prior-transaction linkage
// is kept separate because it sits beside the field blocks on the wire.
type NodeDiff struct {
	Kind           DiffKind
	EntryType      string
	Fields         map[string]any
	PreviousFields map[string]any

	PrevTxnID     string
	PrevTxnLgrSeq string
}

// classifyNode decodes one raw AffectedNodes element. Returns ok=false for
// elements that carry no recognizable variant body; such elements are
// skipped silently, not errors.
func classifyNode(raw any) (NodeDiff, bool) {
	node, ok := raw.(map[string]any)
	if !ok {
		return NodeDiff{}, false
	}

	var (
		kind DiffKind
		body map[string]any
	)
	if b, ok := variantBody(node, "CreatedNode"); ok {
		kind, body = DiffCreated, b
	} else if b, ok := variantBody(node, "ModifiedNode"); ok {
		kind, body = DiffModified, b
	} else if b, ok := variantBody(node, "DeletedNode"); ok {
		kind, body = DiffDeleted, b
	} else {
		return NodeDiff{}, false
	}

	d := NodeDiff{Kind: kind}
	d.EntryType, _ = body["LedgerEntryType"].(string)

	if kind == DiffCreated {
		d.Fields, _ = body["NewFields"].(map[string]any)
	} else {
		d.Fields, _ = body["FinalFields"].(map[string]any)
	}
	d.PreviousFields, _ = body["PreviousFields"].(map[string]any)

	if v, ok := body["PreviousTxnID"]; ok {
		d.PrevTxnID, _ = v.(string)
	}
	if v, ok := body["PreviousTxnLgrSeq"]; ok {
		if s, err := numericString(v); err == nil {
			d.PrevTxnLgrSeq = s
		}
	}
	return d, true
}

// IsOffer reports whether the diff is over an order-book entry.
func (d NodeDiff) IsOffer() bool {
	return d.EntryType == entryTypeOffer
}

func variantBody(node map[string]any, key string) (map[string]any, bool) {
	v, ok := node[key]
	if !ok {
		return nil, false
	}
	body, ok := v.(map[string]any)
	return body, ok
}
