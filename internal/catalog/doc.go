// Package catalog keeps the storefront client's mapping from product display
// name to the numeric product id the order endpoint expects.
//
// A Cache is constructed explicitly and loaded in the background by
// Initialize. Consumers gate on its Readiness with AwaitReady, resolve names
// with Resolve, and rebuild it from scratch with ForceRefresh when an order is
// about to be submitted against an empty or stale mapping. Fetch failures never
// surface as errors; they only make Resolve report absence.
package catalog
