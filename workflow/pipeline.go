// Package workflow implements the blog-post generation pipeline: a fixed
// sequence of stages (searcher, writer, reviewer, publisher) where each
// stage consumes only the artifact produced by the previous one.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/pakagronglb/blogsmith/agent"
)

// StageTrace records one completed stage for observability.
type StageTrace struct {
	Stage    string        `json:"stage"`
	Index    int           `json:"index"`
	Duration time.Duration `json:"duration"`
}

// RunHooks lets callers observe stage boundaries during a pipeline run.
// Either field may be nil.
type RunHooks struct {
	OnStageStart func(stage string, index int)
	OnStageEnd   func(trace StageTrace)
}

// Pipeline executes agents in a fixed order. The output of stage N is the
// input of stage N+1; an error from any stage aborts the run immediately,
// so later stages never execute.
type Pipeline struct {
	name   string
	stages []agent.Agent
}

var _ agent.Agent = (*Pipeline)(nil)

// NewPipeline creates a pipeline over the given stages.
func NewPipeline(name string, stages ...agent.Agent) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one stage")
	}
	return &Pipeline{
		name:   name,
		stages: stages,
	}, nil
}

// Name returns the pipeline identifier.
func (p *Pipeline) Name() string {
	return p.name
}

// Capabilities returns the combined capabilities of all stages.
func (p *Pipeline) Capabilities() []string {
	seen := make(map[string]bool)
	var caps []string
	for _, stage := range p.stages {
		for _, c := range stage.Capabilities() {
			if !seen[c] {
				seen[c] = true
				caps = append(caps, c)
			}
		}
	}
	return append(caps, "pipeline")
}

// Stages returns the ordered stage list.
func (p *Pipeline) Stages() []agent.Agent {
	return p.stages
}

// Process implements agent.Agent by running the pipeline without hooks.
func (p *Pipeline) Process(ctx context.Context, message *agent.Message) (*agent.Message, error) {
	return p.Run(ctx, message, RunHooks{})
}

// Run executes the pipeline, invoking hooks around each stage. The final
// message carries a "pipeline_stages" metadata entry listing the stage
// traces.
func (p *Pipeline) Run(ctx context.Context, message *agent.Message, hooks RunHooks) (*agent.Message, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	traces := make([]StageTrace, 0, len(p.stages))
	current := message

	for i, stage := range p.stages {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("pipeline cancelled at stage %d (%s): %w", i, stage.Name(), ctx.Err())
		default:
		}

		if hooks.OnStageStart != nil {
			hooks.OnStageStart(stage.Name(), i)
		}

		start := time.Now()
		result, err := stage.Process(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s) failed: %w", i, stage.Name(), err)
		}

		trace := StageTrace{
			Stage:    stage.Name(),
			Index:    i,
			Duration: time.Since(start),
		}
		traces = append(traces, trace)
		if hooks.OnStageEnd != nil {
			hooks.OnStageEnd(trace)
		}

		current = result
	}

	if current.Metadata == nil {
		current.Metadata = make(map[string]interface{})
	}
	current.Metadata["pipeline_stages"] = traces

	return current, nil
}
