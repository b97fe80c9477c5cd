// Package convert hosts the two format-conversion stage handlers: decoding
// the proprietary compressed container into a standard one, and normalizing
// the decoded container in place before it becomes the deliverable.
package convert
