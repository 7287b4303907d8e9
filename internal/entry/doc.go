// Package entry defines the vocabulary entry shown as the word of the day
// and stored in the saved history.
package entry
