// Package pipeline implements SPEC_FULL.md §4.6: the five ordered
// stage handlers that make up one tick (EndpointSource,
// FaultLineExtractor, SlowFilter, Regenerator, Publisher), sharing a
// model.RunContext.
package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/perfguard/internal/model"
	"github.com/standardbeagle/perfguard/internal/perrors"
	"github.com/standardbeagle/perfguard/internal/regenerator"
	"github.com/standardbeagle/perfguard/internal/techtable"
)

// EndpointSource is stage 1 (§4.1): fetch endpoints from the metrics
// backend, then filter them by latency threshold and
// supported-technology allowlist.
type EndpointSource struct{}

func (EndpointSource) populate(ctx context.Context, rc *model.RunContext) error {
	endpoints, err := rc.Metrics.Fetch(ctx)
	if err != nil {
		return err
	}
	rc.Endpoints = rc.Metrics.Filter(endpoints, rc.ThresholdMs)
	return nil
}

// FaultLineExtractor is stage 2 (§4.2, §5(a)): for each endpoint, load
// repository files of the endpoint's language, index and
// import-extend their methods, resolve the handler by fuzzy decorator
// match, and merge the transitive call closure into ctx.FaultLine.
//
// Parallel processes endpoints concurrently when true, one goroutine
// per endpoint joined by an errgroup (no concurrency limit is set);
// per-extension file loads are cached and the fault line
// merge is mutex-guarded, satisfying §5(a)'s merge discipline.
type FaultLineExtractor struct {
	Parallel bool
}

func (s *FaultLineExtractor) populate(ctx context.Context, rc *model.RunContext) error {
	if len(rc.Endpoints) == 0 {
		return nil
	}
	rc.FaultLine = model.NewFaultLine()

	var filesMu sync.Mutex
	filesByExt := make(map[string][]*model.File)

	loadFiles := func(row techtable.Row) ([]*model.File, error) {
		filesMu.Lock()
		if files, ok := filesByExt[row.Extension]; ok {
			filesMu.Unlock()
			return files, nil
		}
		filesMu.Unlock()

		files, err := rc.Repo.FilesByExtension(ctx, row.Extension)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			row.Parser.IndexMethods(f)
		}
		row.Parser.ExtendByImports(files)

		filesMu.Lock()
		filesByExt[row.Extension] = files
		filesMu.Unlock()
		return files, nil
	}

	var faultMu sync.Mutex
	process := func(ep *model.Endpoint) error {
		row, ok := techtable.ByTechnology(ep.Technology)
		if !ok {
			return nil
		}
		files, err := loadFiles(row)
		if err != nil {
			return err
		}
		handler := row.Parser.ResolveEndpoint(files, ep.Label)
		if handler == nil {
			return nil
		}
		reached := row.Parser.Reachable(handler)

		faultMu.Lock()
		rc.FaultLine.Merge(reached)
		faultMu.Unlock()
		return nil
	}

	if !s.Parallel {
		for _, ep := range rc.Endpoints {
			if err := process(ep); err != nil {
				return err
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for _, ep := range rc.Endpoints {
		ep := ep
		g.Go(func() error { return process(ep) })
	}
	return g.Wait()
}

// SlowFilter is stage 3 (§4.3, §2.3): narrow the fault line down to
// the methods judged slow. When the fault line holds a single method,
// the classifier is bypassed entirely and that method is kept
// unconditionally.
type SlowFilter struct{}

func (SlowFilter) populate(ctx context.Context, rc *model.RunContext) error {
	if rc.FaultLine == nil || rc.FaultLine.Len() == 0 {
		rc.SlowMethods = nil
		return nil
	}

	methods := rc.FaultLine.Slice()
	if len(methods) == 1 {
		rc.SlowMethods = methods
		return nil
	}

	slow, err := rc.Classifier.Filter(ctx, methods)
	if err != nil {
		return err
	}
	rc.SlowMethods = slow
	return nil
}

// RegeneratorStage is stage 4 (§4.4, §5(b)): drive the
// describe/generate/validate retry loop for every surviving method.
// Parallel runs the per-method loops concurrently; this is always
// safe without extra locking because each Method is a distinct
// record and Regenerate only ever writes its own method.Rewrite.
type RegeneratorStage struct {
	Regen     *regenerator.Regenerator
	ModelName string
	Parallel  bool
}

func (s *RegeneratorStage) populate(ctx context.Context, rc *model.RunContext) error {
	if len(rc.SlowMethods) == 0 {
		return nil
	}

	if rc.ModelConn != nil && s.ModelName != "" {
		available, err := rc.ModelConn.Available(ctx, s.ModelName)
		if err != nil {
			return err
		}
		if !available {
			return perrors.NewModelUnavailableError(s.ModelName)
		}
	}

	if !s.Parallel {
		for _, m := range rc.SlowMethods {
			if err := s.Regen.Regenerate(ctx, m); err != nil {
				return err
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for _, m := range rc.SlowMethods {
		m := m
		g.Go(func() error { return s.Regen.Regenerate(ctx, m) })
	}
	return g.Wait()
}

// Publisher is stage 5 (§4.5, §5(c)): commit every accepted rewrite
// to a fresh branch. The repo-host client is responsible for
// serializing the actual writes (see internal/repoclient's
// publishMu); this stage just drives one call per surviving method.
type Publisher struct{}

func (Publisher) publish(ctx context.Context, rc *model.RunContext) error {
	for _, m := range rc.SlowMethods {
		if m.Rewrite == nil {
			continue
		}
		if err := rc.Repo.Publish(ctx, m, *m.Rewrite); err != nil {
			return err
		}
	}
	return nil
}
