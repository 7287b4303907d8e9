// Package picker produces candidate words for the word of the day, either
// from a fixed list or from a remote random-word service.
package picker
