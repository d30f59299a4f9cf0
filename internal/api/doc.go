// Package api provides the DexHunter REST client.
//
// Endpoints used:
//   - GET  /swap/adaValue                    base asset price in USD (bare number)
//   - GET  /swap/averagePrice/ADA/{tokenId}  token price in base asset
//   - POST /swap/ordersByPair                recent orders for a token pair
//
// Every request carries the partner identifier in the X-Partner-Id header.
package api
