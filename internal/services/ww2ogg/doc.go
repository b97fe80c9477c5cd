// Package ww2ogg wraps the external ww2ogg decode tool, which converts a
// Wwise .wem asset into an Ogg Vorbis container using a packed codebooks
// resource. The tool is a black box: the contract is the invocation
// signature, the exit code, and the presence of a non-empty output file.
package ww2ogg
