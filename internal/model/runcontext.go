package model

import "time"

// RunContext is the mutable record shared by every stage of a single
// pipeline tick. External clients, the classifier, and the scheduling
// parameters survive across ticks; the scratch fields are cleared by
// Reset at the end of every tick.
type RunContext struct {
	Metrics    MetricsClient
	Repo       RepoClient
	ModelConn  ModelClient
	Classifier Classifier

	ThresholdMs  float64
	TickInterval time.Duration

	// Scratch fields, populated stage by stage and cleared on Reset.
	Endpoints   []*Endpoint
	FaultLine   *FaultLine
	SlowMethods []*Method
}

// Reset clears the per-tick scratch fields only; client references and
// scheduling parameters are left untouched so the next tick reuses
// them.
func (c *RunContext) Reset() {
	c.Endpoints = nil
	c.FaultLine = nil
	c.SlowMethods = nil
}
