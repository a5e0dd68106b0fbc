// Package profitbot implements the core of a chat assistant that records
// per-item sales for a small retail operator and turns them into
// profit/margin reports.
//
// The domain is deliberately small: a line parser that turns free text into
// sale entries, a product base mapping model identifiers to unit costs in a
// source currency, a single exchange rate, a report aggregator, and a
// per-user conversation session. Persistence is a handful of small JSON
// documents on disk.
//
// Transports (the Telegram bot in package bot, the CLI in package cmd) sit
// on top of this package and only compose messages.
package profitbot
