package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (o *Orchestrator) compileFinalizeGraph(
	ctx context.Context,
) (compose.Runnable[finalizeInput, finalizeOutput], error) {
	graph := compose.NewGraph[finalizeInput, finalizeOutput]()

	if err := graph.AddLambdaNode("resolve_identity",
		compose.InvokableLambda(func(ctx context.Context, in finalizeInput) (*finalizeState, error) {
			return resolveIdentity(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_identity: %w", err)
	}

	if err := graph.AddLambdaNode("render_transcript",
		compose.InvokableLambda(func(ctx context.Context, in *finalizeState) (*finalizeState, error) {
			return renderTranscript(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node render_transcript: %w", err)
	}

	if err := graph.AddLambdaNode("persist_complaint",
		compose.InvokableLambda(func(ctx context.Context, in *finalizeState) (*finalizeState, error) {
			return persistComplaint(ctx, in, o.saver, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_complaint: %w", err)
	}

	if err := graph.AddLambdaNode("compose_confirmation",
		compose.InvokableLambda(func(ctx context.Context, in *finalizeState) (finalizeOutput, error) {
			return composeConfirmation(in, o.prompts, o.displayName)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_confirmation: %w", err)
	}

	edges := [][2]string{
		{compose.START, "resolve_identity"},
		{"resolve_identity", "render_transcript"},
		{"render_transcript", "persist_complaint"},
		{"persist_complaint", "compose_confirmation"},
		{"compose_confirmation", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.finalize_complaint"))
	if err != nil {
		return nil, fmt.Errorf("compile finalize graph: %w", err)
	}
	return runner, nil
}
