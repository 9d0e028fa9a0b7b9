// Package conflicts parses merge conflict markers, asks the completion gateway to resolve each conflict block, and
// rebuilds the file from the untouched spans and the resolved blocks.
package conflicts
