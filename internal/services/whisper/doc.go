// Package whisper wraps the faster-whisper CLI for speech-to-text.
//
// The Engine is a long-lived object: the binary lookup, device selection,
// and scratch directory are established once on first use and reused for
// every call, mirroring a resident model. Callers must Close the engine
// when the run ends.
//
// Device auto-detection probes for nvidia-smi and falls back to CPU with
// an int8 compute type when no GPU stack is present.
package whisper
