package format

import (
	"github.com/rickgao/dex-buybot/internal/model"
	"github.com/shopspring/decimal"
)

// amountAccessor reads one candidate amount field from an order.
type amountAccessor func(o *model.Order) decimal.Decimal

func extraField(name string) amountAccessor {
	return func(o *model.Order) decimal.Decimal { return o.ExtraAmount(name) }
}

// Spent amount candidates, highest priority first.
var spentAccessors = []amountAccessor{
	func(o *model.Order) decimal.Decimal { return o.AmountIn },
	extraField("input_amount"),
	extraField("amountIn"),
	extraField("in_amount"),
}

// Received amount candidates. Settled amounts win over quoted ones.
var receivedAccessors = []amountAccessor{
	func(o *model.Order) decimal.Decimal { return o.ActualOut },
	func(o *model.Order) decimal.Decimal { return o.ExpectedOut },
	extraField("output_amount"),
	extraField("amountOut"),
	extraField("out_amount"),
}

// firstPositive returns the first accessor result greater than zero, or zero.
func firstPositive(o *model.Order, accessors []amountAccessor) decimal.Decimal {
	for _, get := range accessors {
		if v := get(o); v.IsPositive() {
			return v
		}
	}
	return decimal.Zero
}
