// Package bot implements the conversational engine behind the terminal
// chat loop. The Bot adapts an LLM provider into a small stateful engine:
// it cleans user input, assembles a persona prompt with corpus exemplars
// and recent conversation history, and persists what it learns to the
// statement store unless read-only mode is on.
package bot

import "context"

// Engine is the contract the REPL and the TUI drive a conversation through.
// Train seeds the engine from a named corpus and returns how many new
// exchanges were stored. Respond produces one reply for one user input.
type Engine interface {
	Train(ctx context.Context, corpus string) (int, error)
	Respond(ctx context.Context, input string) (string, error)
	Name() string
	Close() error
}
