package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// GetBaseValue returns the base asset price in USD.
func (c *Client) GetBaseValue(ctx context.Context) (decimal.Decimal, error) {
	var price decimal.Decimal
	if err := c.get(ctx, "/swap/adaValue", &price); err != nil {
		return decimal.Zero, fmt.Errorf("get base value: %w", err)
	}
	return price, nil
}

// GetAveragePrice returns the price of a token denominated in the base asset.
func (c *Client) GetAveragePrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	var resp AveragePriceResponse
	if err := c.get(ctx, "/swap/averagePrice/ADA/"+url.PathEscape(tokenID), &resp); err != nil {
		return decimal.Zero, fmt.Errorf("get average price %s: %w", tokenID, err)
	}
	return resp.PriceBA, nil
}
