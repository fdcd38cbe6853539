package ingest

import "context"

type (
	// TrainSample is one input/output example for the external learner.
	TrainSample struct {
		Input  string
		Output string
	}

	// TrainSink receives the same normalized, validated stream the store
	// keeps, so an external learner can train on it. Implementations own
	// batching and checkpointing.
	TrainSink interface {
		Train(ctx context.Context, samples []TrainSample) error
	}
)
