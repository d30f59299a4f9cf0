package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a DexHunter swap order. Fields the API omits are left zero.
type Order struct {
	ID             string
	TxHash         string // Dedup key
	Status         string
	AmountIn       decimal.Decimal // Raw, input asset units
	ExpectedOut    decimal.Decimal // Raw, output asset units
	ActualOut      decimal.Decimal // Raw, output asset units; zero until settled
	SubmissionTime string
	CompletionTime string
	TokenIDIn      string
	TokenIDOut     string
	SenderAddress  string
	DexName        string

	// Extra holds every other numeric field by its JSON name, so alternate
	// spellings of the amount fields can still be resolved.
	Extra map[string]decimal.Decimal
}

// JSON field names of the known order fields.
const (
	fieldID             = "_id"
	fieldTxHash         = "tx_hash"
	fieldStatus         = "status"
	fieldAmountIn       = "amount_in"
	fieldExpectedOut    = "expected_out_amount"
	fieldActualOut      = "actual_out_amount"
	fieldSubmissionTime = "submission_time"
	fieldCompletionTime = "completion_time"
	fieldTokenIDIn      = "token_id_in"
	fieldTokenIDOut     = "token_id_out"
	fieldSenderAddress  = "sender_address"
	fieldDexName        = "dex_name"
)

var knownFields = map[string]bool{
	fieldID: true, fieldTxHash: true, fieldStatus: true,
	fieldAmountIn: true, fieldExpectedOut: true, fieldActualOut: true,
	fieldSubmissionTime: true, fieldCompletionTime: true,
	fieldTokenIDIn: true, fieldTokenIDOut: true,
	fieldSenderAddress: true, fieldDexName: true,
}

// IsBuyOf reports whether the order received the given token.
func (o Order) IsBuyOf(tokenID string) bool {
	return o.TokenIDOut == tokenID
}

// ExtraAmount returns the numeric value of an additional field, or zero.
func (o Order) ExtraAmount(field string) decimal.Decimal {
	return o.Extra[field]
}

// Time returns the completion time, falling back to the submission time.
// ok is false when neither parses.
func (o Order) Time() (time.Time, bool) {
	if t, ok := ParseTimestamp(o.CompletionTime); ok {
		return t, true
	}
	return ParseTimestamp(o.SubmissionTime)
}

// UnmarshalJSON decodes an order leniently: numeric fields may be numbers or
// numeric strings, and malformed values decode to zero instead of failing.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Order{
		ID:             rawString(raw[fieldID]),
		TxHash:         rawString(raw[fieldTxHash]),
		Status:         rawString(raw[fieldStatus]),
		AmountIn:       rawDecimal(raw[fieldAmountIn]),
		ExpectedOut:    rawDecimal(raw[fieldExpectedOut]),
		ActualOut:      rawDecimal(raw[fieldActualOut]),
		SubmissionTime: rawString(raw[fieldSubmissionTime]),
		CompletionTime: rawString(raw[fieldCompletionTime]),
		TokenIDIn:      rawString(raw[fieldTokenIDIn]),
		TokenIDOut:     rawString(raw[fieldTokenIDOut]),
		SenderAddress:  rawString(raw[fieldSenderAddress]),
		DexName:        rawString(raw[fieldDexName]),
	}

	for k, v := range raw {
		if knownFields[k] {
			continue
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(v); err != nil || string(v) == "null" {
			continue
		}
		if o.Extra == nil {
			o.Extra = make(map[string]decimal.Decimal)
		}
		o.Extra[k] = d
	}

	return nil
}

// MarshalJSON encodes the order with the API's field names.
func (o Order) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(knownFields)+len(o.Extra))
	for k, v := range o.Extra {
		m[k] = v
	}
	m[fieldID] = o.ID
	m[fieldTxHash] = o.TxHash
	m[fieldStatus] = o.Status
	m[fieldAmountIn] = o.AmountIn
	m[fieldExpectedOut] = o.ExpectedOut
	m[fieldActualOut] = o.ActualOut
	m[fieldSubmissionTime] = o.SubmissionTime
	m[fieldCompletionTime] = o.CompletionTime
	m[fieldTokenIDIn] = o.TokenIDIn
	m[fieldTokenIDOut] = o.TokenIDOut
	m[fieldSenderAddress] = o.SenderAddress
	m[fieldDexName] = o.DexName
	return json.Marshal(m)
}

func rawString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func rawDecimal(v json.RawMessage) decimal.Decimal {
	if len(v) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(v); err != nil {
		return decimal.Zero
	}
	return d
}

// ParseTimestamp parses an ISO 8601 timestamp, with or without a zone.
func ParseTimestamp(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
