// Package domain contains the core domain entities used by the arbitrage
// scanner: marketplace listings, comparable sale prices, evaluated deals and
// scan results. The types are free of infrastructure concerns so they can be
// shared between scrapers, the evaluator, storage and the API.
package domain
