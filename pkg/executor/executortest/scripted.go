// Package executortest provides a scripted executor for tests.
package executortest

import (
	"context"
	"errors"
	"sync"

	"github.com/helmcode/kubectl-ai-harness/pkg/executor"
)

// Response is one canned outcome for a command.
type Response struct {
	Output string
	Stderr string
	Fail   bool
}

// Call records one invocation.
type Call struct {
	Command  string
	Tolerate bool
	// Canceled reports whether the context was already done.
	Canceled bool
}

// Scripted answers commands from a table. Each command maps to a queue of
// responses; the last response repeats once the queue is drained. Unknown
// commands return Default.
type Scripted struct {
	mu        sync.Mutex
	responses map[string][]Response
	Default   Response
	calls     []Call
}

func New() *Scripted {
	return &Scripted{responses: make(map[string][]Response)}
}

// On queues responses for command.
func (s *Scripted) On(command string, responses ...Response) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[command] = append(s.responses[command], responses...)
	return s
}

// OnOutput queues a successful response with the given output.
func (s *Scripted) OnOutput(command, output string) *Scripted {
	return s.On(command, Response{Output: output})
}

func (s *Scripted) Run(ctx context.Context, command string, tolerate bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Command: command, Tolerate: tolerate, Canceled: ctx.Err() != nil})

	resp := s.Default
	if queue := s.responses[command]; len(queue) > 0 {
		resp = queue[0]
		if len(queue) > 1 {
			s.responses[command] = queue[1:]
		}
	}

	if resp.Fail {
		if tolerate {
			return resp.Stderr, nil
		}
		return "", &executor.CommandError{Command: command, Stderr: resp.Stderr, Err: errors.New("exit status 1")}
	}
	return resp.Output, nil
}

// Calls returns every invocation so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Commands returns the command strings invoked so far.
func (s *Scripted) Commands() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command
	}
	return out
}

// Count reports how often command was run.
func (s *Scripted) Count(command string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Command == command {
			n++
		}
	}
	return n
}
