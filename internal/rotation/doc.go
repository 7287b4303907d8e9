// Package rotation owns the current word of the day. A rotation picks a
// candidate, enriches it when needed and persists the complete entry as a
// single last-write-wins replacement, so it is safe to run redundantly from
// several triggers. A failed rotation never touches the stored word.
package rotation
