package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The genai import graph links go.opencensus.io, whose stats/view init
	// starts a permanent worker goroutine that is not stoppable from here.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// fakeEngine implements bot.Engine with scripted replies. Respond returns
// errs[i] or replies[i] for the i-th call, falling back to "ok".
type fakeEngine struct {
	trainCalls  int
	trainCorpus string
	trainErr    error

	inputs  []string
	replies []string
	errs    []error
}

func (f *fakeEngine) Train(ctx context.Context, corpus string) (int, error) {
	f.trainCalls++
	f.trainCorpus = corpus
	if f.trainErr != nil {
		return 0, f.trainErr
	}
	return 42, nil
}

func (f *fakeEngine) Respond(ctx context.Context, input string) (string, error) {
	i := len(f.inputs)
	f.inputs = append(f.inputs, input)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "ok", nil
}

func (f *fakeEngine) Name() string { return "TerminalBot" }
func (f *fakeEngine) Close() error { return nil }

func runScript(t *testing.T, engine *fakeEngine, input string, opts Options) string {
	t.Helper()
	var out bytes.Buffer
	r := New(engine, strings.NewReader(input), &out, opts)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

func TestRun_HelloTranscript(t *testing.T) {
	engine := &fakeEngine{replies: []string{"Hi there!"}}
	got := runScript(t, engine, "Hello\nexit\n", Options{Corpus: "english"})

	want := "Preparing and training the bot (first run may take a while)...\n" +
		"Bot is ready. Type your message, or type \"exit\" to quit.\n" +
		"You: Bot: Hi there!\n" +
		"You: Bot: Goodbye!\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transcript mismatch (-want +got):\n%s", diff)
	}

	if engine.trainCalls != 1 {
		t.Errorf("Expected 1 training call, got %d", engine.trainCalls)
	}
	if engine.trainCorpus != "english" {
		t.Errorf("Expected corpus english, got %q", engine.trainCorpus)
	}
	if len(engine.inputs) != 1 || engine.inputs[0] != "Hello" {
		t.Errorf("Expected one engine call with Hello, got %v", engine.inputs)
	}
}

func TestRun_ExitWithoutEngineCall(t *testing.T) {
	engine := &fakeEngine{}
	got := runScript(t, engine, "exit\n", Options{SkipTraining: true})

	if len(engine.inputs) != 0 {
		t.Errorf("Expected no engine calls, got %v", engine.inputs)
	}
	if strings.Count(got, "Bot: Goodbye!") != 1 {
		t.Errorf("Expected exactly one farewell, got %q", got)
	}
}

func TestRun_QuitIsCaseInsensitiveAndTrimmed(t *testing.T) {
	for _, line := range []string{"QUIT\n", "  Quit  \n", "Exit\n", "\texit\t\n"} {
		engine := &fakeEngine{}
		got := runScript(t, engine, line, Options{SkipTraining: true})

		if len(engine.inputs) != 0 {
			t.Errorf("Input %q: expected no engine calls, got %v", line, engine.inputs)
		}
		if !strings.Contains(got, "Bot: Goodbye!") {
			t.Errorf("Input %q: expected farewell, got %q", line, got)
		}
	}
}

func TestRun_BlankLinesAreSkippedSilently(t *testing.T) {
	engine := &fakeEngine{}
	got := runScript(t, engine, "\n   \n\t\nHello\nexit\n", Options{SkipTraining: true})

	if len(engine.inputs) != 1 || engine.inputs[0] != "Hello" {
		t.Errorf("Expected one engine call with Hello, got %v", engine.inputs)
	}
	// Blank lines produce a fresh prompt and nothing else
	if strings.Count(got, "You: ") != 5 {
		t.Errorf("Expected 5 prompts, got %d in %q", strings.Count(got, "You: "), got)
	}
	if strings.Count(got, "Bot: ") != 2 {
		t.Errorf("Expected reply and farewell only, got %q", got)
	}
}

func TestRun_TurnErrorKeepsLoopRunning(t *testing.T) {
	engine := &fakeEngine{
		errs:    []error{errors.New("rate limit exceeded (429)")},
		replies: []string{"", "Better now."},
	}
	got := runScript(t, engine, "Hello\nStill there?\nexit\n", Options{SkipTraining: true})

	if !strings.Contains(got, "Bot: Sorry, I ran into a problem: rate limit exceeded (429)\n") {
		t.Errorf("Expected error line, got %q", got)
	}
	if !strings.Contains(got, "Bot: Better now.\n") {
		t.Errorf("Expected loop to keep answering after the error, got %q", got)
	}
	if len(engine.inputs) != 2 {
		t.Errorf("Expected 2 engine calls, got %v", engine.inputs)
	}
}

func TestRun_TrainingFailureIsNonFatal(t *testing.T) {
	engine := &fakeEngine{
		trainErr: errors.New("unknown corpus \"english.klingon\""),
		replies:  []string{"Hi there!"},
	}
	got := runScript(t, engine, "Hello\nexit\n", Options{Corpus: "english.klingon"})

	if !strings.Contains(got, "Training warning: unknown corpus \"english.klingon\"\n") {
		t.Errorf("Expected training warning, got %q", got)
	}
	if !strings.Contains(got, "Continuing; the bot may have limited knowledge this run.\n") {
		t.Errorf("Expected continuation notice, got %q", got)
	}
	if !strings.Contains(got, "Bot: Hi there!\n") {
		t.Errorf("Expected chat to work after training failure, got %q", got)
	}
}

func TestRun_SkipTraining(t *testing.T) {
	engine := &fakeEngine{}
	got := runScript(t, engine, "exit\n", Options{SkipTraining: true})

	if engine.trainCalls != 0 {
		t.Errorf("Expected no training call, got %d", engine.trainCalls)
	}
	if strings.Contains(got, "Preparing and training") {
		t.Errorf("Expected no training notice, got %q", got)
	}
}

func TestRun_EndOfInputSaysGoodbye(t *testing.T) {
	engine := &fakeEngine{replies: []string{"Hi there!"}}
	got := runScript(t, engine, "Hello\n", Options{SkipTraining: true})

	want := "Bot is ready. Type your message, or type \"exit\" to quit.\n" +
		"You: Bot: Hi there!\n" +
		"You: \n" +
		"Bot: Goodbye!\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_UnterminatedFinalLineIsProcessed(t *testing.T) {
	engine := &fakeEngine{replies: []string{"Hi there!"}}
	got := runScript(t, engine, "Hello", Options{SkipTraining: true})

	if len(engine.inputs) != 1 || engine.inputs[0] != "Hello" {
		t.Errorf("Expected the final line to reach the engine, got %v", engine.inputs)
	}
	if !strings.Contains(got, "Bot: Hi there!\n") {
		t.Errorf("Expected a reply, got %q", got)
	}
	if !strings.Contains(got, "Bot: Goodbye!\n") {
		t.Errorf("Expected farewell at end of input, got %q", got)
	}
}

func TestRun_CancelAtPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	engine := &fakeEngine{}
	var out bytes.Buffer
	r := New(engine, pr, &out, Options{SkipTraining: true})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	// Let the loop reach the prompt, then interrupt it.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if !strings.Contains(out.String(), "Bot: Goodbye!") {
		t.Errorf("Expected farewell after interrupt, got %q", out.String())
	}
	if len(engine.inputs) != 0 {
		t.Errorf("Expected no engine calls, got %v", engine.inputs)
	}
}

// stuckEngine blocks in Respond until the context is canceled.
type stuckEngine struct {
	fakeEngine
	started chan struct{}
}

func (s *stuckEngine) Respond(ctx context.Context, input string) (string, error) {
	close(s.started)
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRun_CancelDuringTurn(t *testing.T) {
	engine := &stuckEngine{started: make(chan struct{})}
	var out bytes.Buffer
	r := New(engine, strings.NewReader("Hello\n"), &out, Options{SkipTraining: true})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	select {
	case <-engine.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Engine was never called")
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	got := out.String()
	if !strings.Contains(got, "Bot: Goodbye!") {
		t.Errorf("Expected farewell after mid-turn interrupt, got %q", got)
	}
	if strings.Contains(got, "Sorry, I ran into a problem") {
		t.Errorf("Interrupt should not read as a turn failure, got %q", got)
	}
}

func TestIsExit(t *testing.T) {
	exits := []string{"exit", "quit", "EXIT", "Quit", "eXiT"}
	for _, s := range exits {
		if !isExit(s) {
			t.Errorf("Expected %q to exit", s)
		}
	}
	stays := []string{"", "exits", "quitting", "exit now", "bye"}
	for _, s := range stays {
		if isExit(s) {
			t.Errorf("Expected %q not to exit", s)
		}
	}
}
