// Package queue persists the per-item pipeline state machine in SQLite.
//
// Every located asset becomes one pipeline item journaled through the
// collect, decode, normalize, transcribe, and record stages. The journal
// survives across runs: failed items remain visible via 'wemscribe queue
// list' and their retained workspace copies are the manual-retry surface.
package queue
