// Package stage defines the handler contract shared by the workflow stages.
package stage
