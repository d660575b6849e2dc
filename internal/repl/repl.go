// Package repl implements the terminal conversation loop: read one line,
// hand it to the engine, print one reply, until the user exits or the
// context is canceled.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"chatterm/internal/bot"
)

// Lines the loop prints. The exact wording is part of the terminal contract.
const (
	trainingNotice = "Preparing and training the bot (first run may take a while)..."
	readyBanner    = `Bot is ready. Type your message, or type "exit" to quit.`
	prompt         = "You: "
	farewell       = "Bot: Goodbye!"
)

// Options configures a REPL run.
type Options struct {
	Corpus       string      // corpus identifier passed to Train at startup
	SkipTraining bool        // start chatting without the startup training pass
	Logger       *zap.Logger // defaults to a no-op logger
}

// REPL drives one interactive conversation over a pair of streams.
type REPL struct {
	engine bot.Engine
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	corpus string
	train  bool
}

// New wires a REPL around an engine and its input and output streams.
func New(engine bot.Engine, in io.Reader, out io.Writer, opts Options) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &REPL{
		engine: engine,
		in:     in,
		out:    out,
		logger: logger,
		corpus: opts.Corpus,
		train:  !opts.SkipTraining,
	}
}

// Run executes the conversation until the user types an exit word, input
// ends, or ctx is canceled. All three end with the farewell line and a nil
// error. Training failures are reported on out and never stop the run; a
// single bad turn prints one error line and the loop keeps going.
func (r *REPL) Run(ctx context.Context) error {
	if r.train {
		fmt.Fprintln(r.out, trainingNotice)
		if _, err := r.engine.Train(ctx, r.corpus); err != nil {
			if ctx.Err() != nil {
				return r.interrupted()
			}
			r.logger.Warn("training failed", zap.Error(err))
			fmt.Fprintf(r.out, "Training warning: %v\n", err)
			fmt.Fprintln(r.out, "Continuing; the bot may have limited knowledge this run.")
		}
	}

	fmt.Fprintln(r.out, readyBanner)

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go r.readLines(lines, done)

	for {
		fmt.Fprint(r.out, prompt)

		select {
		case <-ctx.Done():
			return r.interrupted()

		case text, ok := <-lines:
			if !ok {
				// End of input behaves like an interrupt.
				return r.interrupted()
			}

			input := strings.TrimSpace(text)
			if isExit(input) {
				fmt.Fprintln(r.out, farewell)
				return nil
			}
			if input == "" {
				continue
			}

			reply, err := r.engine.Respond(ctx, input)
			if err != nil {
				if ctx.Err() != nil {
					return r.interrupted()
				}
				r.logger.Debug("turn failed", zap.Error(err))
				fmt.Fprintf(r.out, "Bot: Sorry, I ran into a problem: %v\n", err)
				continue
			}
			fmt.Fprintf(r.out, "Bot: %s\n", reply)
		}
	}
}

// interrupted finishes the current terminal line and says goodbye.
func (r *REPL) interrupted() error {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, farewell)
	return nil
}

// readLines pumps input lines into ch and closes it when input ends. A
// reader blocked on a terminal stays blocked until process exit; done only
// releases the goroutine between lines.
func (r *REPL) readLines(ch chan<- string, done <-chan struct{}) {
	defer close(ch)
	reader := bufio.NewReader(r.in)
	for {
		text, err := reader.ReadString('\n')
		if text != "" {
			select {
			case ch <- text:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// isExit reports whether a trimmed input line asks to leave the session.
func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	}
	return false
}
