// Package llm provides the language-model service client.
package llm

import "context"

// Client is the single operation the analyzer needs from a language-model
// backend. The service returns free-form text; all structure is imposed by
// the caller's parsing.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
