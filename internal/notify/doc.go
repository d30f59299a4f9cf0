// Package notify delivers buy notifications to a Discord webhook.
//
// Payloads are Discord embeds, posted as {"embeds": [payload]}. The
// Dispatcher sends a batch strictly in order, one at a time, waiting a
// fixed delay between sends. Delivery failures are logged and dropped.
package notify
