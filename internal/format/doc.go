// Package format turns a completed buy order into a Discord embed.
//
// Evaluation (amounts, estimates, USD value, market cap, tier) is separate
// from rendering so the same model.Buy can be archived and streamed.
// Neither step performs I/O; all prices come in through model.Prices.
package format
