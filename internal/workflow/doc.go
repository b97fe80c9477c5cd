// Package workflow advances queue items through the processing stages.
//
// The Manager resolves requested assets against the search tree, enqueues
// the ones found, and processes each item sequentially through the stage
// handlers (collect, decode, normalize, transcribe, record) while capturing
// progress and failure metadata in the journal.
//
// Items are processed one at a time because the transcription stage owns
// the single inference engine and dominates runtime. A per-item failure is
// terminal for that item only; engine bring-up and output table failures
// abort the run, and any item that has not completed keeps its staged
// workspace copy for inspection.
//
// Add new lifecycle stages by extending Stages, updating the queue status
// enums, and teaching the manager how to transition items; this package is
// the authoritative home for that coordination logic.
package workflow
