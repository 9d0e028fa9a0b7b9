// Package completion sends prompts to a hosted language model and returns plain or structured text.
//
// Callers choose a ModelTier rather than a model name; the Configuration binds each tier to a concrete model of the
// selected provider. Provider responses travel as a tagged ResponseEnvelope so that callers never depend on a
// provider's wire format.
package completion
