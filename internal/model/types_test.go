package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrder_UnmarshalJSON(t *testing.T) {
	data := `{
		"_id": "abc",
		"tx_hash": "hash-1",
		"status": "COMPLETE",
		"amount_in": 25000000,
		"expected_out_amount": "1200",
		"actual_out_amount": 1250,
		"submission_time": "2025-01-15T12:00:00Z",
		"completion_time": "2025-01-15T12:00:40.123Z",
		"token_id_in": "",
		"token_id_out": "sch",
		"sender_address": "addr1qxyz",
		"dex_name": "MINSWAP",
		"input_amount": "26000000",
		"fee": 1.5,
		"note": "not a number",
		"batcher_fee": null
	}`

	var o Order
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if o.TxHash != "hash-1" {
		t.Errorf("TxHash = %q, want hash-1", o.TxHash)
	}
	if !o.AmountIn.Equal(decimal.NewFromInt(25000000)) {
		t.Errorf("AmountIn = %s, want 25000000", o.AmountIn)
	}
	if !o.ExpectedOut.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("ExpectedOut = %s, want 1200 (quoted number)", o.ExpectedOut)
	}
	if !o.ActualOut.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("ActualOut = %s, want 1250", o.ActualOut)
	}
	if o.DexName != "MINSWAP" || o.SenderAddress != "addr1qxyz" {
		t.Errorf("DexName/SenderAddress = %q/%q", o.DexName, o.SenderAddress)
	}
	if got := o.ExtraAmount("input_amount"); !got.Equal(decimal.NewFromInt(26000000)) {
		t.Errorf("ExtraAmount(input_amount) = %s, want 26000000", got)
	}
	if got := o.ExtraAmount("fee"); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("ExtraAmount(fee) = %s, want 1.5", got)
	}
	if _, ok := o.Extra["note"]; ok {
		t.Error("non-numeric field should not be kept in Extra")
	}
	if _, ok := o.Extra["batcher_fee"]; ok {
		t.Error("null field should not be kept in Extra")
	}
	if _, ok := o.Extra["tx_hash"]; ok {
		t.Error("known field should not be duplicated in Extra")
	}
}

func TestOrder_UnmarshalJSON_Malformed(t *testing.T) {
	var o Order
	data := `{"tx_hash": 42, "amount_in": "lots", "actual_out_amount": {"v": 1}}`
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		t.Fatalf("Unmarshal should tolerate malformed fields, got %v", err)
	}
	if o.TxHash != "" {
		t.Errorf("TxHash = %q, want empty for non-string value", o.TxHash)
	}
	if !o.AmountIn.IsZero() || !o.ActualOut.IsZero() {
		t.Errorf("malformed amounts should decode to zero, got %s/%s", o.AmountIn, o.ActualOut)
	}

	if err := json.Unmarshal([]byte(`[1,2]`), &o); err == nil {
		t.Error("Unmarshal of non-object should fail")
	}
}

func TestOrder_RoundTrip(t *testing.T) {
	in := Order{
		TxHash:      "hash-rt",
		AmountIn:    decimal.NewFromInt(5000000),
		ExpectedOut: decimal.NewFromInt(77),
		TokenIDOut:  "sch",
		Extra:       map[string]decimal.Decimal{"amountOut": decimal.NewFromInt(80)},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out Order
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out.TxHash != in.TxHash || out.TokenIDOut != in.TokenIDOut {
		t.Errorf("round trip lost identity fields: %+v", out)
	}
	if !out.AmountIn.Equal(in.AmountIn) || !out.ExpectedOut.Equal(in.ExpectedOut) {
		t.Errorf("round trip amounts = %s/%s", out.AmountIn, out.ExpectedOut)
	}
	if !out.ExtraAmount("amountOut").Equal(decimal.NewFromInt(80)) {
		t.Errorf("round trip extra = %s, want 80", out.ExtraAmount("amountOut"))
	}
}

func TestOrder_IsBuyOf(t *testing.T) {
	buy := Order{TokenIDIn: "", TokenIDOut: "sch"}
	sell := Order{TokenIDIn: "sch", TokenIDOut: ""}

	if !buy.IsBuyOf("sch") {
		t.Error("order receiving sch should be a buy of sch")
	}
	if sell.IsBuyOf("sch") {
		t.Error("order spending sch should not be a buy of sch")
	}
}

func TestOrder_Time(t *testing.T) {
	tests := []struct {
		name   string
		order  Order
		want   time.Time
		wantOK bool
	}{
		{
			name:   "completion preferred",
			order:  Order{SubmissionTime: "2025-01-15T12:00:00Z", CompletionTime: "2025-01-15T12:01:00Z"},
			want:   time.Date(2025, 1, 15, 12, 1, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "submission fallback without zone",
			order:  Order{SubmissionTime: "2025-01-15T12:00:00.5"},
			want:   time.Date(2025, 1, 15, 12, 0, 0, 500000000, time.UTC),
			wantOK: true,
		},
		{
			name:   "unparseable",
			order:  Order{CompletionTime: "yesterday"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.order.Time()
			if ok != tt.wantOK {
				t.Fatalf("Time() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Time() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsset_Normalize(t *testing.T) {
	ada := Asset{Symbol: "ADA", Decimals: 6}
	if got := ada.Normalize(decimal.NewFromInt(25500000)); !got.Equal(decimal.RequireFromString("25.5")) {
		t.Errorf("Normalize = %s, want 25.5", got)
	}

	sch := Asset{Symbol: "SCH", Decimals: 0}
	if got := sch.Normalize(decimal.NewFromInt(1234)); !got.Equal(decimal.NewFromInt(1234)) {
		t.Errorf("Normalize = %s, want 1234", got)
	}
}

func TestPrices(t *testing.T) {
	p := Prices{
		BaseUSD:       0.5,
		TokenInBase:   0.002,
		CounterInBase: map[string]float64{"": 1, "night": 0.1},
	}

	if got := p.InBase(""); got != 1 {
		t.Errorf("InBase(base) = %v, want 1", got)
	}
	if got := p.InBase("night"); got != 0.1 {
		t.Errorf("InBase(night) = %v, want 0.1", got)
	}
	if got := p.InBase("unknown"); got != 0 {
		t.Errorf("InBase(unknown) = %v, want 0", got)
	}
	if got := p.TokenUSD(); got != 0.001 {
		t.Errorf("TokenUSD() = %v, want 0.001", got)
	}
}

func TestTier_String(t *testing.T) {
	if TierMax.String() != "max" || TierLight.String() != "light" || Tier(9).String() != "unknown" {
		t.Error("unexpected tier names")
	}
}
