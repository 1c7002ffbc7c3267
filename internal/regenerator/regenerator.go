// Package regenerator implements SPEC_FULL.md §4.4: producing an
// accepted rewrite for a slow method via describe/generate/validate,
// retrying up to a bounded number of attempts.
package regenerator

import (
	"context"
	"strings"

	"github.com/standardbeagle/perfguard/internal/config"
	"github.com/standardbeagle/perfguard/internal/model"
)

// DefaultMaxRuns is the reference retry bound from the original
// driver loop.
const DefaultMaxRuns = 3

// Regenerator drives a single generative-model client through the
// describe/generate/validate loop for one method at a time.
type Regenerator struct {
	client  model.ModelClient
	prompts *config.Prompt
	maxRuns int
}

// New builds a Regenerator. maxRuns <= 0 falls back to DefaultMaxRuns.
func New(client model.ModelClient, prompts *config.Prompt, maxRuns int) *Regenerator {
	if maxRuns <= 0 {
		maxRuns = DefaultMaxRuns
	}
	return &Regenerator{client: client, prompts: prompts, maxRuns: maxRuns}
}

// describe fills the description-generation prompt and returns the
// model's response field.
func (r *Regenerator) describe(ctx context.Context, body, language string) (string, error) {
	prompt := config.Fill(r.prompts.DescriptionGeneration, map[string]string{
		"$CODE$":     body,
		"$LANGUAGE$": language,
	})
	return r.client.Send(ctx, prompt)
}

// generate fills the code-generation prompt and returns the model's
// response field.
func (r *Regenerator) generate(ctx context.Context, body, signature, language string) (string, error) {
	prompt := config.Fill(r.prompts.CodeGeneration, map[string]string{
		"$CODE$":      body,
		"$SIGNATURE$": signature,
		"$LANGUAGE$":  language,
	})
	return r.client.Send(ctx, prompt)
}

// validate runs the two-step analyze/summarize judge: an analyse
// prompt yields a narrative, a summarise prompt over that narrative
// yields a verdict accepted iff it case-insensitively contains "yes".
func (r *Regenerator) validate(ctx context.Context, description, rewrite, language string) (bool, error) {
	analysePrompt := config.Fill(r.prompts.CodejudgeAnalyse, map[string]string{
		"$PROBLEM$":  description,
		"$CODE$":     rewrite,
		"$LANGUAGE$": language,
	})
	analysis, err := r.client.Send(ctx, analysePrompt)
	if err != nil {
		return false, err
	}

	summarisePrompt := config.Fill(r.prompts.CodejudgeSummarise, map[string]string{
		"$ANALYSIS$": analysis,
	})
	verdict, err := r.client.Send(ctx, summarisePrompt)
	if err != nil {
		return false, err
	}

	return strings.Contains(strings.ToLower(verdict), "yes"), nil
}

// Regenerate runs the describe/generate/validate loop for method, up
// to maxRuns attempts, and attaches the last candidate to
// method.Rewrite regardless of whether the final validation passed
// (§9 Open Questions: the original always attaches the last
// candidate; that behavior is preserved here, not silently changed).
func (r *Regenerator) Regenerate(ctx context.Context, method *model.Method) error {
	language := method.Owner.Language
	signature := method.Name

	var candidate string
	for attempt := 0; attempt < r.maxRuns; attempt++ {
		desc, err := r.describe(ctx, method.Body, language)
		if err != nil {
			return err
		}

		candidate, err = r.generate(ctx, method.Body, signature, language)
		if err != nil {
			return err
		}

		ok, err := r.validate(ctx, desc, candidate, language)
		if err != nil {
			return err
		}
		if ok {
			break
		}
	}

	method.Rewrite = &candidate
	return nil
}
