// Package preflight provides readiness checks for the external tools and
// filesystem paths the pipeline depends on.
//
// The run command calls RunAll after creating the workspace directories and
// refuses to start when a required check fails, so a doomed run is caught
// before any asset is staged.
package preflight
