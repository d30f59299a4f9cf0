package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/dex-buybot/internal/model"
	"github.com/rickgao/dex-buybot/internal/notify"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Field names.
const (
	FieldSpent       = "💵 Spent"
	FieldReceived    = "🪙 Received"
	FieldPrice       = "📊 Price"
	FieldMarketCap   = "🏦 Market Cap"
	FieldDEX         = "🏦 DEX"
	FieldTransaction = "🔗 Transaction"
	FieldBuyer       = "👤 Buyer"
)

// Unavailable is rendered in place of a value that could not be derived.
const Unavailable = "N/A"

const defaultVenue = "DexHunter"

// buyNamespace derives stable event IDs from transaction hashes.
var buyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://dexhunter.io/tx"))

// Config describes the tracked token and how notifications are branded.
type Config struct {
	Token       model.Asset
	TotalSupply float64
	ImageURL    string

	Base        model.Asset
	BaseSubunit string // e.g. "lovelace"

	BotName      string
	ExplorerURL  string // Transaction hash is appended
	ExplorerName string
}

// Formatter builds buy notifications.
type Formatter struct {
	cfg     Config
	printer *message.Printer
	now     func() time.Time
}

// New creates a formatter.
func New(cfg Config) *Formatter {
	if cfg.BaseSubunit == "" {
		cfg.BaseSubunit = cfg.Base.Symbol
	}
	return &Formatter{
		cfg:     cfg,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
}

// Format evaluates and renders an order in one step.
func (f *Formatter) Format(o model.Order, counter model.Asset, prices model.Prices) notify.Payload {
	return f.Render(f.Evaluate(o, counter, prices))
}

// Evaluate derives the buy event for an order bought with counter.
// The order is not modified.
func (f *Formatter) Evaluate(o model.Order, counter model.Asset, prices model.Prices) model.Buy {
	spent := counter.Normalize(firstPositive(&o, spentAccessors))
	received := f.cfg.Token.Normalize(firstPositive(&o, receivedAccessors))

	counterInBase := prices.InBase(counter.TokenID)
	if counter.TokenID == f.cfg.Base.TokenID {
		counterInBase = 1
	}

	buy := model.Buy{
		ID:               uuid.NewSHA1(buyNamespace, []byte(o.TxHash)),
		TxHash:           o.TxHash,
		Pair:             counter.Symbol,
		Spent:            spent,
		SpentSymbol:      counter.Symbol,
		Received:         received,
		TokenPriceInBase: prices.TokenInBase,
		TokenPriceUSD:    prices.TokenUSD(),
		Sender:           o.SenderAddress,
		DexName:          o.DexName,
	}

	if spent.IsZero() && received.IsPositive() && prices.TokenInBase > 0 {
		inBase := received.Mul(decimal.NewFromFloat(prices.TokenInBase))
		buy.SpentEstimated = true
		if counterInBase > 0 {
			buy.Spent = inBase.Div(decimal.NewFromFloat(counterInBase))
		} else {
			// Counter price unknown: keep the estimate in base units.
			buy.Spent = inBase
			buy.SpentSymbol = f.cfg.Base.Symbol
			counterInBase = 1
		}
	}

	if buy.Spent.IsPositive() && counterInBase > 0 && prices.BaseUSD > 0 {
		spentF, _ := buy.Spent.Float64()
		buy.SpentUSD = spentF * counterInBase * prices.BaseUSD
		buy.SpentUSDKnown = true
	}
	buy.Tier = TierFor(buy.SpentUSD)

	if f.cfg.TotalSupply > 0 && prices.TokenInBase > 0 {
		buy.MarketCapBase = f.cfg.TotalSupply * prices.TokenInBase
		buy.MarketCapUSD = buy.MarketCapBase * prices.BaseUSD
	}

	if t, ok := o.Time(); ok {
		buy.Timestamp = t
	} else {
		buy.Timestamp = f.now().UTC()
	}

	return buy
}

// Render builds the embed for an evaluated buy.
func (f *Formatter) Render(b model.Buy) notify.Payload {
	style := styleFor(b.Tier)

	fields := []notify.Field{
		{Name: FieldSpent, Value: f.spentValue(b), Inline: true},
		{Name: FieldReceived, Value: f.receivedValue(b), Inline: true},
		{Name: FieldPrice, Value: f.priceValue(b), Inline: true},
		{Name: FieldMarketCap, Value: f.marketCapValue(b), Inline: true},
	}
	if b.DexName != "" {
		fields = append(fields, notify.Field{Name: FieldDEX, Value: b.DexName, Inline: true})
	}
	fields = append(fields, notify.Field{
		Name:   FieldTransaction,
		Value:  fmt.Sprintf("[View on %s](%s%s)", f.cfg.ExplorerName, f.cfg.ExplorerURL, b.TxHash),
		Inline: true,
	})
	if b.Sender != "" {
		fields = append(fields, notify.Field{
			Name:   FieldBuyer,
			Value:  "`" + TruncateAddress(b.Sender) + "`",
			Inline: true,
		})
	}

	venue := b.DexName
	if venue == "" {
		venue = defaultVenue
	}

	p := notify.Payload{
		Title:     fmt.Sprintf("%s New $%s Buy!", style.emoji, f.cfg.Token.Symbol),
		Color:     style.color,
		Fields:    fields,
		Footer:    &notify.Footer{Text: f.cfg.BotName + " • " + venue},
		Timestamp: b.Timestamp.UTC().Format(time.RFC3339),
	}
	if f.cfg.ImageURL != "" {
		p.Thumbnail = &notify.Image{URL: f.cfg.ImageURL}
	}
	return p
}

// Startup builds the embed announcing that monitoring has begun.
func (f *Formatter) Startup(pairs []model.Asset, interval time.Duration) notify.Payload {
	lines := make([]string, len(pairs))
	for i, a := range pairs {
		lines[i] = fmt.Sprintf("• %s → %s swaps", a.Symbol, f.cfg.Token.Symbol)
	}

	return notify.Payload{
		Title:       fmt.Sprintf("🐍 %s Started!", f.cfg.BotName),
		Description: fmt.Sprintf("Now monitoring for $%s buys on %s.", f.cfg.Token.Symbol, defaultVenue),
		Color:       0x00FF00,
		Fields: []notify.Field{
			{Name: "📡 Monitoring", Value: strings.Join(lines, "\n"), Inline: true},
			{Name: "⏱️ Poll Interval", Value: fmt.Sprintf("%g seconds", interval.Seconds()), Inline: true},
		},
		Footer:    &notify.Footer{Text: "Powered by " + defaultVenue + " API"},
		Timestamp: f.now().UTC().Format(time.RFC3339),
	}
}

func (f *Formatter) spentValue(b model.Buy) string {
	spent, _ := b.Spent.Float64()
	amount := fmt.Sprintf("**%s %s**", FormatNumber(spent, 2), b.SpentSymbol)
	if b.SpentEstimated {
		amount += " (est.)"
	}

	usd := "(" + Unavailable + " USD)"
	if b.SpentUSDKnown {
		usd = fmt.Sprintf("($%s USD)", FormatNumber(b.SpentUSD, 2))
	}
	return amount + "\n" + usd
}

func (f *Formatter) receivedValue(b model.Buy) string {
	var amount string
	if b.Received.Equal(b.Received.Truncate(0)) {
		amount = f.printer.Sprintf("%d", b.Received.IntPart())
	} else {
		v, _ := b.Received.Float64()
		amount = f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
	}
	return fmt.Sprintf("**%s $%s**", amount, f.cfg.Token.Symbol)
}

func (f *Formatter) priceValue(b model.Buy) string {
	if b.TokenPriceInBase <= 0 {
		return Unavailable
	}

	sub := decimal.NewFromFloat(b.TokenPriceInBase).Shift(f.cfg.Base.Decimals)
	value := fmt.Sprintf("%s %s", sub.StringFixed(2), f.cfg.BaseSubunit)
	if b.TokenPriceUSD > 0 {
		value += fmt.Sprintf("\n($%.6f USD)", b.TokenPriceUSD)
	} else {
		value += "\n(" + Unavailable + " USD)"
	}
	return value
}

func (f *Formatter) marketCapValue(b model.Buy) string {
	if b.MarketCapBase <= 0 {
		return Unavailable
	}

	value := fmt.Sprintf("%s %s", FormatNumber(b.MarketCapBase, 2), f.cfg.Base.Symbol)
	if b.MarketCapUSD > 0 {
		value += fmt.Sprintf("\n($%s USD)", FormatNumber(b.MarketCapUSD, 2))
	}
	return value
}
