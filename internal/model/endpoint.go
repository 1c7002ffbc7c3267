package model

// Endpoint is an externally observed HTTP entry point reported by the
// metrics backend. Once produced by the EndpointSource stage it is
// immutable for the remainder of the tick.
type Endpoint struct {
	Label      string
	Technology string
	Latency    float64 // milliseconds
}
