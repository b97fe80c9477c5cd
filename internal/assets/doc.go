// Package assets parses asset request lists and resolves the requested
// filenames against a directory tree.
package assets
