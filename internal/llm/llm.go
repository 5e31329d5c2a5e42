// Package llm wraps the chat and embedding backends the service can talk to.
package llm

import "context"

// ChatClient produces a completion for a system/user prompt pair.
type ChatClient interface {
	Chat(ctx context.Context, system, user string) (string, error)
}
