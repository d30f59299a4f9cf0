// Package dex adapts the DexHunter client into the price and order sources
// the watcher consumes. Upstream failures are logged and absorbed here:
// prices degrade to 0 (unknown) and order fetches degrade to an empty list.
package dex
