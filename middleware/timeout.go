package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pakagronglb/blogsmith/agent"
)

// TimeoutError is returned when a stage exceeds its configured deadline.
type TimeoutError struct {
	AgentName string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent %s timed out after %s", e.AgentName, e.Timeout)
}

// Timeout wraps an agent with a per-call deadline.
type Timeout struct {
	agent   agent.Agent
	timeout time.Duration
}

var _ agent.Agent = (*Timeout)(nil)

// NewTimeout creates a timeout decorator. A non-positive timeout defaults
// to 30 seconds.
func NewTimeout(wrapped agent.Agent, timeout time.Duration) *Timeout {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Timeout{
		agent:   wrapped,
		timeout: timeout,
	}
}

// Name returns the name of the underlying agent.
func (t *Timeout) Name() string {
	return t.agent.Name()
}

// Capabilities returns the capabilities of the underlying agent.
func (t *Timeout) Capabilities() []string {
	return t.agent.Capabilities()
}

// Process runs the underlying agent with a deadline applied to the context.
func (t *Timeout) Process(ctx context.Context, message *agent.Message) (*agent.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	response, err := t.agent.Process(ctx, message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{AgentName: t.agent.Name(), Timeout: t.timeout}
		}
		return nil, err
	}
	return response, nil
}
