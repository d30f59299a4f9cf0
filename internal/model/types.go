package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Assets and prices
// -----------------------------------------------------------------------------

// Asset identifies a token and how its raw amounts are scaled.
type Asset struct {
	Symbol   string // Display symbol (e.g., "ADA", "NIGHT")
	TokenID  string // Policy ID + asset name hex; empty for the base asset
	Decimals int32  // Raw amount = display amount * 10^Decimals
}

// Normalize converts a raw amount in the asset's smallest unit to display units.
func (a Asset) Normalize(raw decimal.Decimal) decimal.Decimal {
	return raw.Shift(-a.Decimals)
}

// Prices holds the quotes in effect for one poll cycle. Zero means unknown.
type Prices struct {
	BaseUSD     float64 // Base asset in USD
	TokenInBase float64 // Tracked token in base asset

	// CounterInBase maps a counter-asset token ID to its price in base asset.
	// The base asset itself maps to 1.
	CounterInBase map[string]float64
}

// InBase returns the price of a counter-asset in base asset, or 0 if unknown.
func (p Prices) InBase(tokenID string) float64 {
	return p.CounterInBase[tokenID]
}

// TokenUSD returns the tracked token price in USD, or 0 if either quote is unknown.
func (p Prices) TokenUSD() float64 {
	return p.TokenInBase * p.BaseUSD
}

// -----------------------------------------------------------------------------
// Buy events
// -----------------------------------------------------------------------------

// Tier is the severity band of a buy, derived from its USD size.
type Tier int

const (
	TierLight  Tier = iota // < $10
	TierMedium             // < $50
	TierStrong             // < $100
	TierMax                // >= $100
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierLight:
		return "light"
	case TierMedium:
		return "medium"
	case TierStrong:
		return "strong"
	case TierMax:
		return "max"
	default:
		return "unknown"
	}
}

// Buy is a completed purchase of the tracked token, evaluated against the
// prices of the cycle it was discovered in.
type Buy struct {
	ID     uuid.UUID `json:"id"`
	TxHash string    `json:"tx_hash"`
	Pair   string    `json:"pair"` // Counter-asset symbol

	Spent          decimal.Decimal `json:"spent"`
	SpentSymbol    string          `json:"spent_symbol"`    // Usually Pair; base symbol for unconvertible estimates
	SpentEstimated bool            `json:"spent_estimated"` // Spent derived from received * price
	Received       decimal.Decimal `json:"received"`

	SpentUSD      float64 `json:"spent_usd"`
	SpentUSDKnown bool    `json:"spent_usd_known"`

	TokenPriceInBase float64 `json:"token_price_in_base"` // 0 = unknown
	TokenPriceUSD    float64 `json:"token_price_usd"`     // 0 = unknown
	MarketCapBase    float64 `json:"market_cap_base"`     // 0 = unavailable
	MarketCapUSD     float64 `json:"market_cap_usd"`      // 0 = unavailable

	Tier      Tier      `json:"tier"`
	Sender    string    `json:"sender,omitempty"`
	DexName   string    `json:"dex_name,omitempty"`
	Timestamp time.Time `json:"timestamp"` // Completion, else submission, else observation time
}
