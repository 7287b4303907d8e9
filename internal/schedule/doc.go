// Package schedule decides when the current word is rotated automatically.
//
// Two triggers exist and they are deliberately not coordinated. The
// persistent trigger is a named daily alarm owned by the long-running
// daemon: it first fires at the next local midnight and then every 1440
// minutes. The transient trigger is a one-shot timer owned by an open popup
// Session; it fires at local midnight, rotates and re-arms itself for the
// following midnight until the session is closed.
//
// Both triggers may fire on the same day. Rotation is a full last-write-wins
// replacement of the stored word, so a double rotation is harmless and no
// "already rotated today" marker is kept.
package schedule
