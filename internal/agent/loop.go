package agent

import (
	"context"
	"fmt"

	"github.com/akepo225/offline-coding-agent/internal/feedback"
	"github.com/akepo225/offline-coding-agent/internal/history"
	"github.com/akepo225/offline-coding-agent/internal/llm"
	"github.com/akepo225/offline-coding-agent/internal/parser"
	"github.com/akepo225/offline-coding-agent/internal/session"
	"github.com/akepo225/offline-coding-agent/internal/tools"
	"github.com/akepo225/offline-coding-agent/pkg/log"
)

// Generator is the model backend capability the loop depends on. The
// generation call is the loop's sole suspension point; *llm.Client is the
// production implementation.
type Generator interface {
	ChatCompletion(ctx context.Context, messages []llm.Message, opts *llm.Options) (*llm.ChatResponse, error)
}

// LoopOptions wires the loop's collaborators.
type LoopOptions struct {
	Generator    Generator
	Registry     *tools.Registry
	Executor     *tools.Executor
	Formatter    *feedback.Formatter
	Conversation *session.Conversation

	// Audit is optional; when set, every execution is recorded.
	Audit *history.Store

	// MaxIterations caps generation calls per request (default 2). The
	// cap, not completion-phrase heuristics, is what guarantees the loop
	// terminates on any model behavior.
	MaxIterations int
}

// Loop drives the generate, parse, execute, feed-back cycle for a session.
// Execution is strictly sequential: one generation, then the parsed calls
// in order, then one feedback append, repeated up to the iteration cap.
type Loop struct {
	generator     Generator
	registry      *tools.Registry
	executor      *tools.Executor
	formatter     *feedback.Formatter
	conv          *session.Conversation
	audit         *history.Store
	maxIterations int
}

// NewLoop validates the options and creates a loop.
func NewLoop(opts LoopOptions) (*Loop, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if opts.Registry == nil || opts.Executor == nil {
		return nil, fmt.Errorf("registry and executor are required")
	}
	if opts.Formatter == nil {
		opts.Formatter = feedback.NewFormatter(feedback.DefaultConfig())
	}
	if opts.Conversation == nil {
		opts.Conversation = session.NewConversation(0)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 2
	}

	return &Loop{
		generator:     opts.Generator,
		registry:      opts.Registry,
		executor:      opts.Executor,
		formatter:     opts.Formatter,
		conv:          opts.Conversation,
		audit:         opts.Audit,
		maxIterations: opts.MaxIterations,
	}, nil
}

// Conversation exposes the session state for the surrounding CLI.
func (l *Loop) Conversation() *session.Conversation {
	return l.conv
}

// Reset clears the conversation and the formatter's already-provided
// tracking.
func (l *Loop) Reset() {
	l.conv.Reset()
	l.formatter.Reset()
}

// Run executes one user request through the loop.
//
// Per-call failures (parse errors, safety rejections, denied confirmations,
// execution errors) are folded into feedback so the model can adapt within
// the iteration cap. Only a backend failure is fatal and propagates.
func (l *Loop) Run(ctx context.Context, req Request) (*Result, error) {
	maxIterations := l.maxIterations
	if req.MaxIterations > 0 {
		maxIterations = req.MaxIterations
	}

	result := &Result{}
	l.conv.Append("user", req.Task)
	systemPrompt := buildSystemPrompt(l.registry, l.conv)

	for iteration := 0; iteration < maxIterations; iteration++ {
		result.Iterations++

		messages := append([]llm.Message{{Role: "system", Content: systemPrompt}}, l.conv.History()...)
		response, err := l.generator.ChatCompletion(ctx, messages, nil)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iteration+1, err)
		}

		text := response.Choices[0].Message.Content
		l.conv.Append("assistant", text)
		result.Content = text

		calls, parseErrs := parser.Parse(text)
		for _, perr := range parseErrs {
			log.Warn("session %s: %v", l.conv.ID(), perr)
		}

		// No calls and nothing malformed: the text is the final answer.
		if len(calls) == 0 && len(parseErrs) == 0 {
			return result, nil
		}

		executions := l.executeCalls(ctx, iteration, calls)
		for _, exec := range executions {
			result.Records = append(result.Records, ToolCallRecord{
				ToolName:  exec.Call.Name,
				Arguments: exec.Call.Args.String(),
				Result:    exec.Result.Output,
				IsError:   !exec.Result.Success,
			})
		}

		l.conv.Append("user", l.formatter.Format(executions, parseErrs))

		if iteration+1 >= maxIterations {
			// Cap reached while the model still wanted tools: return the
			// last generated text plus the recorded results as-is.
			result.HitIterationCap = true
			log.Info("session %s: iteration cap (%d) reached", l.conv.ID(), maxIterations)
			return result, nil
		}
	}

	return result, nil
}

// executeCalls runs the iteration's calls in parse order, one at a time.
func (l *Loop) executeCalls(ctx context.Context, iteration int, calls []parser.ToolCall) []feedback.Execution {
	executions := make([]feedback.Execution, 0, len(calls))
	for _, call := range calls {
		execResult := l.executor.Execute(ctx, call)
		executions = append(executions, feedback.Execution{Call: call, Result: execResult})

		if l.audit != nil {
			if err := l.audit.RecordExecution(ctx, l.conv.ID(), iteration, call, execResult); err != nil {
				log.Error("session %s: audit record failed: %v", l.conv.ID(), err)
			}
		}
	}
	return executions
}
