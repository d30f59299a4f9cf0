package api

import (
	"github.com/rickgao/dex-buybot/internal/model"
	"github.com/shopspring/decimal"
)

// Order status and sort values accepted by /swap/ordersByPair.
const (
	StatusComplete  = "COMPLETE"
	FilterStatus    = "STATUS"
	SortStartTime   = "STARTTIME"
	SortDescending  = "DESC"
	DefaultPageSize = 50
)

// OrdersByPairRequest is the body of POST /swap/ordersByPair.
// An empty token ID denotes the base asset.
type OrdersByPairRequest struct {
	Page          int           `json:"page"`
	PerPage       int           `json:"perPage"`
	TokenID1      string        `json:"tokenId1"`
	TokenID2      string        `json:"tokenId2"`
	Filters       []OrderFilter `json:"filters"`
	OrderSorts    string        `json:"orderSorts"`
	SortDirection string        `json:"sortDirection"`
}

// OrderFilter restricts an order query.
type OrderFilter struct {
	FilterType string   `json:"filterType"`
	Values     []string `json:"values"`
}

// OrdersByPairResponse from POST /swap/ordersByPair. The API returns either
// this envelope or a bare array of orders.
type OrdersByPairResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
}

// AveragePriceResponse from GET /swap/averagePrice/ADA/{tokenId}
type AveragePriceResponse struct {
	PriceBA decimal.Decimal `json:"price_ba"`
	PriceAB decimal.Decimal `json:"price_ab"`
}
