// Package commitmsg turns staged changes into a single-line commit subject.
//
// Normalize reduces arbitrary completion text to a usable subject or to the empty string. Generator tries an
// ordered list of strategies and always ends with a deterministic message, so a commit never waits on the gateway.
package commitmsg
