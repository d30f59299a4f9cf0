// Package archive keeps an append-only Postgres log of notified buys.
//
// BuyWriter accepts buys from the dispatcher without blocking, batches them
// and inserts with ON CONFLICT (tx_hash) DO NOTHING, so a buy is stored at
// most once even across restarts. Amounts are stored as NUMERIC in display
// units.
package archive
