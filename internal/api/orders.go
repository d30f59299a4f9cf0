package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rickgao/dex-buybot/internal/model"
)

// CompletedOrdersRequest builds the query for the most recent completed
// orders between two tokens, newest first.
func CompletedOrdersRequest(tokenID1, tokenID2 string, perPage int) OrdersByPairRequest {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return OrdersByPairRequest{
		Page:     0,
		PerPage:  perPage,
		TokenID1: tokenID1,
		TokenID2: tokenID2,
		Filters: []OrderFilter{
			{FilterType: FilterStatus, Values: []string{StatusComplete}},
		},
		OrderSorts:    SortStartTime,
		SortDirection: SortDescending,
	}
}

// OrdersByPair returns one page of orders matching the request.
func (c *Client) OrdersByPair(ctx context.Context, req OrdersByPairRequest) ([]model.Order, error) {
	body, err := c.post(ctx, "/swap/ordersByPair", req)
	if err != nil {
		return nil, fmt.Errorf("orders by pair: %w", err)
	}

	orders, err := decodeOrders(body)
	if err != nil {
		return nil, fmt.Errorf("orders by pair: %w", err)
	}
	return orders, nil
}

// decodeOrders accepts the envelope form, a bare array, or null.
func decodeOrders(body []byte) ([]model.Order, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var orders []model.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		return orders, nil
	}

	var resp OrdersByPairResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return resp.Orders, nil
}
