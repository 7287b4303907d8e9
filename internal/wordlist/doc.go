// Package wordlist loads the candidate words used by the static picker,
// either from the embedded default list or from a user supplied file.
package wordlist
