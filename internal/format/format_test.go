package format

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/dex-buybot/internal/model"
	"github.com/rickgao/dex-buybot/internal/notify"
	"github.com/shopspring/decimal"
)

var (
	ada   = model.Asset{Symbol: "ADA", TokenID: "", Decimals: 6}
	night = model.Asset{Symbol: "NIGHT", TokenID: "night", Decimals: 6}
	sch   = model.Asset{Symbol: "SCH", TokenID: "sch", Decimals: 0}
)

func newTestFormatter() *Formatter {
	f := New(Config{
		Token:        sch,
		TotalSupply:  1_000_000_000,
		ImageURL:     "https://example.com/sch.png",
		Base:         ada,
		BaseSubunit:  "lovelace",
		BotName:      "Snek Cash Buy Bot",
		ExplorerURL:  "https://cardanoscan.io/transaction/",
		ExplorerName: "CardanoScan",
	})
	f.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func field(t *testing.T, p notify.Payload, name string) string {
	t.Helper()
	fld, ok := p.Field(name)
	if !ok {
		t.Fatalf("payload has no %q field", name)
	}
	return fld.Value
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		x        float64
		decimals int
		want     string
	}{
		{9.99, 2, "9.99"},
		{0, 2, "0.00"},
		{999, 0, "999"},
		{12340, 2, "12.34K"},
		{1_500_000, 2, "1.50M"},
		{2_000_000_000, 1, "2000.0M"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.x, tt.decimals); got != tt.want {
			t.Errorf("FormatNumber(%v, %d) = %q, want %q", tt.x, tt.decimals, got, tt.want)
		}
	}
}

func TestTruncateAddress(t *testing.T) {
	long := "addr1qxy2k7h8n9m0p3q4r5s6t7u8v9w0x1y2z3a" // 40 chars
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"empty", "", "Unknown"},
		{"8 chars", "addr1abc", "addr1abc"},
		{"19 chars", "addr1abcdefghijklmn", "addr1abcdefghijklmn"},
		{"40 chars", long, "addr1qxy...0x1y2z3a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateAddress(tt.addr); got != tt.want {
				t.Errorf("TruncateAddress(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}

	if got := TruncateAddress(long); len(got) != 19 {
		t.Errorf("len(TruncateAddress(40 chars)) = %d, want 19", len(got))
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		usd  float64
		want model.Tier
	}{
		{0, model.TierLight},
		{9.99, model.TierLight},
		{10, model.TierMedium},
		{49.99, model.TierMedium},
		{50, model.TierStrong},
		{99.99, model.TierStrong},
		{100, model.TierMax},
		{5000, model.TierMax},
	}

	for _, tt := range tests {
		if got := TierFor(tt.usd); got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.usd, got, tt.want)
		}
	}
}

func TestEvaluate_BasePair(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{
		TxHash:         "tx1",
		AmountIn:       decimal.NewFromInt(100_000_000), // 100 ADA
		ExpectedOut:    decimal.NewFromInt(40_000),
		ActualOut:      decimal.NewFromInt(50_000),
		CompletionTime: "2025-01-15T12:00:00Z",
		TokenIDOut:     "sch",
		DexName:        "MINSWAP",
	}
	prices := model.Prices{BaseUSD: 0.8, TokenInBase: 0.002}

	b := f.Evaluate(o, ada, prices)

	if !b.Spent.Equal(decimal.NewFromInt(100)) || b.SpentSymbol != "ADA" || b.SpentEstimated {
		t.Errorf("spent = %s %s est=%v, want 100 ADA", b.Spent, b.SpentSymbol, b.SpentEstimated)
	}
	if !b.Received.Equal(decimal.NewFromInt(50_000)) {
		t.Errorf("received = %s, want 50000 (actual preferred over expected)", b.Received)
	}
	if !b.SpentUSDKnown || !approx(b.SpentUSD, 80) {
		t.Errorf("SpentUSD = %v known=%v, want 80", b.SpentUSD, b.SpentUSDKnown)
	}
	if b.Tier != model.TierStrong {
		t.Errorf("Tier = %v, want strong", b.Tier)
	}
	if !approx(b.MarketCapBase, 2_000_000) {
		t.Errorf("MarketCapBase = %v, want 2000000", b.MarketCapBase)
	}
	if !b.Timestamp.Equal(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", b.Timestamp)
	}
	if b.ID == f.Evaluate(model.Order{TxHash: "tx2"}, ada, prices).ID {
		t.Error("different hashes should yield different IDs")
	}
	if b.ID != f.Evaluate(o, ada, prices).ID {
		t.Error("same hash should yield the same ID")
	}
}

func TestEvaluate_DoesNotMutateOrder(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{
		TxHash:     "tx1",
		ActualOut:  decimal.NewFromInt(1000),
		TokenIDOut: "sch",
		Extra:      map[string]decimal.Decimal{"amountIn": decimal.NewFromInt(3_000_000)},
	}
	before := o.AmountIn

	f.Evaluate(o, ada, model.Prices{BaseUSD: 1, TokenInBase: 1})

	if !o.AmountIn.Equal(before) || len(o.Extra) != 1 {
		t.Error("Evaluate modified the order")
	}
}

func TestEvaluate_AliasPriority(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{
		TxHash: "tx1",
		Extra: map[string]decimal.Decimal{
			"input_amount":  decimal.Zero,
			"amountIn":      decimal.NewFromInt(7_000_000),
			"in_amount":     decimal.NewFromInt(9_000_000),
			"output_amount": decimal.NewFromInt(300),
			"out_amount":    decimal.NewFromInt(999),
		},
	}

	b := f.Evaluate(o, ada, model.Prices{})

	if !b.Spent.Equal(decimal.NewFromInt(7)) {
		t.Errorf("spent = %s, want 7 (first non-zero alias)", b.Spent)
	}
	if !b.Received.Equal(decimal.NewFromInt(300)) {
		t.Errorf("received = %s, want 300", b.Received)
	}
}

func TestEvaluate_EstimatedSpend(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{TxHash: "tx1", ActualOut: decimal.NewFromInt(10_000)}

	t.Run("base pair", func(t *testing.T) {
		b := f.Evaluate(o, ada, model.Prices{BaseUSD: 0.5, TokenInBase: 0.003})
		if !b.SpentEstimated {
			t.Fatal("SpentEstimated = false, want true")
		}
		if !b.Spent.Equal(decimal.NewFromInt(30)) || b.SpentSymbol != "ADA" {
			t.Errorf("spent = %s %s, want 30 ADA", b.Spent, b.SpentSymbol)
		}
		if !strings.Contains(f.Render(b).Fields[0].Value, "(est.)") {
			t.Error("estimated spend should be marked (est.)")
		}
	})

	t.Run("secondary pair with known price", func(t *testing.T) {
		prices := model.Prices{
			BaseUSD:       0.5,
			TokenInBase:   0.003,
			CounterInBase: map[string]float64{"night": 0.1},
		}
		b := f.Evaluate(o, night, prices)
		if !b.Spent.Equal(decimal.NewFromInt(300)) || b.SpentSymbol != "NIGHT" {
			t.Errorf("spent = %s %s, want 300 NIGHT", b.Spent, b.SpentSymbol)
		}
		if !b.SpentUSDKnown || !approx(b.SpentUSD, 15) {
			t.Errorf("SpentUSD = %v, want 15", b.SpentUSD)
		}
	})

	t.Run("secondary pair with unknown price", func(t *testing.T) {
		b := f.Evaluate(o, night, model.Prices{BaseUSD: 0.5, TokenInBase: 0.003})
		if !b.Spent.Equal(decimal.NewFromInt(30)) || b.SpentSymbol != "ADA" {
			t.Errorf("spent = %s %s, want 30 ADA", b.Spent, b.SpentSymbol)
		}
	})

	t.Run("no price no estimate", func(t *testing.T) {
		b := f.Evaluate(o, ada, model.Prices{BaseUSD: 0.5})
		if b.SpentEstimated || !b.Spent.IsZero() {
			t.Errorf("spent = %s est=%v, want 0 without estimate", b.Spent, b.SpentEstimated)
		}
	})
}

func TestEvaluate_SecondaryPairUnknownPrice(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{TxHash: "tx1", AmountIn: decimal.NewFromInt(5_000_000), ActualOut: decimal.NewFromInt(100)}

	b := f.Evaluate(o, night, model.Prices{BaseUSD: 0.5, TokenInBase: 0.01})

	if b.SpentUSDKnown {
		t.Error("SpentUSDKnown = true without a NIGHT price")
	}
	if got := f.Render(b).Fields[0].Value; got != "**5.00 NIGHT**\n(N/A USD)" {
		t.Errorf("spent field = %q", got)
	}
}

func TestRender(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{
		TxHash:         "abc123",
		AmountIn:       decimal.NewFromInt(250_000_000),
		ActualOut:      decimal.NewFromInt(1_234_567),
		SubmissionTime: "2025-01-15T11:59:00Z",
		SenderAddress:  "addr1qxy2k7h8n9m0p3q4r5s6t7u8v9w0x1y2z3a4",
		DexName:        "SPLASH",
	}
	p := f.Format(o, ada, model.Prices{BaseUSD: 0.5, TokenInBase: 0.0002})

	if p.Title != "🐍🚀 New $SCH Buy!" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Color != 0x00FF00 {
		t.Errorf("Color = %#x, want 0x00FF00", p.Color)
	}
	if got := field(t, p, FieldSpent); got != "**250.00 ADA**\n($125.00 USD)" {
		t.Errorf("spent = %q", got)
	}
	if got := field(t, p, FieldReceived); got != "**1,234,567 $SCH**" {
		t.Errorf("received = %q", got)
	}
	if got := field(t, p, FieldPrice); got != "200.00 lovelace\n($0.000100 USD)" {
		t.Errorf("price = %q", got)
	}
	if got := field(t, p, FieldMarketCap); got != "200.00K ADA\n($100.00K USD)" {
		t.Errorf("market cap = %q", got)
	}
	if got := field(t, p, FieldDEX); got != "SPLASH" {
		t.Errorf("dex = %q", got)
	}
	if got := field(t, p, FieldTransaction); got != "[View on CardanoScan](https://cardanoscan.io/transaction/abc123)" {
		t.Errorf("transaction = %q", got)
	}
	if got := field(t, p, FieldBuyer); got != "`addr1qxy...x1y2z3a4`" {
		t.Errorf("buyer = %q", got)
	}
	if p.Footer == nil || p.Footer.Text != "Snek Cash Buy Bot • SPLASH" {
		t.Errorf("footer = %+v", p.Footer)
	}
	if p.Thumbnail == nil || p.Thumbnail.URL != "https://example.com/sch.png" {
		t.Errorf("thumbnail = %+v", p.Thumbnail)
	}
	if p.Timestamp != "2025-01-15T11:59:00Z" {
		t.Errorf("Timestamp = %q, want submission time", p.Timestamp)
	}
}

func TestRender_PriceUnavailable(t *testing.T) {
	f := newTestFormatter()
	o := model.Order{TxHash: "tx1", AmountIn: decimal.NewFromInt(1_000_000), ActualOut: decimal.NewFromInt(10)}

	p := f.Format(o, ada, model.Prices{})

	if got := field(t, p, FieldMarketCap); got != Unavailable {
		t.Errorf("market cap = %q, want %q", got, Unavailable)
	}
	if got := field(t, p, FieldPrice); got != Unavailable {
		t.Errorf("price = %q, want %q", got, Unavailable)
	}
	if got := field(t, p, FieldSpent); got != "**1.00 ADA**\n(N/A USD)" {
		t.Errorf("spent = %q", got)
	}
	if _, ok := p.Field(FieldBuyer); ok {
		t.Error("buyer field should be omitted without a sender")
	}
	if _, ok := p.Field(FieldDEX); ok {
		t.Error("dex field should be omitted without a dex name")
	}
	if p.Footer.Text != "Snek Cash Buy Bot • DexHunter" {
		t.Errorf("footer = %q", p.Footer.Text)
	}
	if p.Timestamp != "2025-03-01T00:00:00Z" {
		t.Errorf("Timestamp = %q, want fallback to now", p.Timestamp)
	}
	if p.Color != 0x90EE90 {
		t.Errorf("Color = %#x, want light tier", p.Color)
	}
}

func TestStartup(t *testing.T) {
	f := newTestFormatter()
	p := f.Startup([]model.Asset{ada, night}, 15*time.Second)

	if p.Title != "🐍 Snek Cash Buy Bot Started!" {
		t.Errorf("Title = %q", p.Title)
	}
	if got := field(t, p, "📡 Monitoring"); got != "• ADA → SCH swaps\n• NIGHT → SCH swaps" {
		t.Errorf("monitoring = %q", got)
	}
	if got := field(t, p, "⏱️ Poll Interval"); got != "15 seconds" {
		t.Errorf("interval = %q", got)
	}
}
