// Package results persists transcripts as the pipeline's CSV deliverable.
package results
