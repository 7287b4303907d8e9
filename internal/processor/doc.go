// Package processor wires the word of the day components together. It
// builds the store, picker, enrichment provider, rotation manager and
// history from the loaded configuration and implements every command the
// cli package dispatches to, from the popup and daemon to the history
// subcommands.
package processor
