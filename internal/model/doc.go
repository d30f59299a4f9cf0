// Package model defines the domain types shared by the watcher pipeline.
//
// Types:
//   - Asset: a token with its decimals (the base asset has an empty token ID)
//   - Order: a DexHunter order as returned by the API, read-only to the pipeline
//   - Prices: point-in-time quotes fetched once per poll cycle
//   - Buy: one evaluated purchase of the tracked token, ready to render or store
//
// Raw on-chain amounts are integers in the asset's smallest unit and are held
// as arbitrary-precision decimals until normalized.
package model
