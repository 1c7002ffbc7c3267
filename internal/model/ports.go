package model

import "context"

// MetricsClient is the EndpointSource contract (§4.1): fetch endpoints
// observed by the metrics backend and filter them down to the ones
// worth tracing.
type MetricsClient interface {
	Fetch(ctx context.Context) ([]*Endpoint, error)
	Filter(endpoints []*Endpoint, thresholdMs float64) []*Endpoint
}

// RepoClient is the Publisher contract (§4.5): list source files of a
// given extension from the target repository and publish an accepted
// rewrite back to it.
type RepoClient interface {
	FilesByExtension(ctx context.Context, ext string) ([]*File, error)
	Publish(ctx context.Context, method *Method, newBody string) error
}

// ModelClient is the generative-model transport contract shared by the
// Regenerator and the prompt-based Classifier (§4.4, §4.3): send a
// populated prompt and get back the model's textual response, and
// report whether a given model name is presently available.
type ModelClient interface {
	Send(ctx context.Context, prompt string) (string, error)
	Available(ctx context.Context, model string) (bool, error)
}

// Classifier is the SlowFilter contract (§4.3): narrow a fault line
// down to the methods judged slow, preserving input order.
type Classifier interface {
	Filter(ctx context.Context, methods []*Method) ([]*Method, error)
}
