package tool

import (
	"context"
	"fmt"
)

type sequentialThinkingArgs struct {
	Thought    string `json:"thought" desc:"The current reasoning step" required:"true"`
	Step       int    `json:"step" desc:"Index of this step, starting at 1" required:"true"`
	TotalSteps int    `json:"total_steps" desc:"Expected number of steps" required:"true"`
}

// NewSequentialThinkingTool creates a tool that echoes a numbered reasoning step.
// It has no side effects; the agent uses it to lay out a plan before acting.
func NewSequentialThinkingTool() Registration {
	return Func("sequential_thinking", "Record one step of a step-by-step reasoning process",
		func(ctx context.Context, args sequentialThinkingArgs) (string, error) {
			if args.Step < 1 || args.TotalSteps < 1 {
				return "", fmt.Errorf("step and total_steps must be positive, got %d/%d", args.Step, args.TotalSteps)
			}
			return fmt.Sprintf("[step %d/%d]: %s", args.Step, args.TotalSteps, args.Thought), nil
		})
}
