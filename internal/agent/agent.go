package agent

import (
	"context"
)

// Agent defines the interface for an agent that can execute tasks
type Agent interface {
	// Execute runs the agent with the given request
	Execute(ctx context.Context, req Request) (*Result, error)

	// Close releases any resources held by the agent
	Close() error
}

// LocalAgent implements Agent on top of a Loop driving a locally hosted
// model. The model handle is acquired by the caller at session start and
// passed in; the agent does not reach into ambient state.
type LocalAgent struct {
	loop *Loop
}

// NewLocalAgent creates an agent from an assembled loop.
func NewLocalAgent(loop *Loop) *LocalAgent {
	return &LocalAgent{loop: loop}
}

// Execute runs the agent with the given request
func (a *LocalAgent) Execute(ctx context.Context, req Request) (*Result, error) {
	return a.loop.Run(ctx, req)
}

// Loop exposes the underlying loop for session management.
func (a *LocalAgent) Loop() *Loop {
	return a.loop
}

// Close releases any resources held by the agent
func (a *LocalAgent) Close() error {
	// The model client and audit store are owned by the caller.
	return nil
}
