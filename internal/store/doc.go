// Package store provides the persistent key-value storage shared by the
// background daemon and the popup. Every write fully replaces the value
// under its key; there are no transactions across keys and no
// compare-and-swap, so concurrent writers resolve as last write wins.
package store
