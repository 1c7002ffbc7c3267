// Package classifier implements SPEC_FULL.md §4.3's Classifier
// interface: LearnedClassifier (chunked token classification) and
// PromptClassifier (generative-model judgment), both honoring the
// contract that input order survives into the output.
package classifier

import (
	"context"

	"github.com/pkoukk/tiktoken-go"

	"github.com/standardbeagle/perfguard/internal/model"
)

// Label is a chunk-level classification outcome, mirroring the
// original Classifier.Label enum (SLOW, FAST, ERR).
type Label int

const (
	LabelFast Label = iota
	LabelSlow
	LabelErr
)

// ChunkPredictor performs binary slow/fast inference on one token
// chunk. The pretrained model itself is out of this system's scope
// per §1 ("the run-time use of such a classifier is in scope only via
// its abstract interface") — LearnedClassifier owns the chunking and
// majority-vote mechanics; ChunkPredictor is the pluggable model call.
type ChunkPredictor interface {
	PredictLabel(ctx context.Context, chunkText string) (Label, error)
}

// DefaultTokenMax is the reference chunk length from the original
// Classifier.TOKEN_MAX, kept as a configurable default rather than
// hardcoded (SPEC_FULL.md's supplemented-features note).
const DefaultTokenMax = 450

// LearnedClassifier reproduces the original's tokenize/chunk/vote
// algorithm. No pack repo ships Hugging Face tokenizer bindings, so
// tokenization is done with tiktoken-go's cl100k_base encoding
// instead of the original GraphCodeBERT tokenizer — a disclosed
// substitution (see DESIGN.md), not a behavioral shortcut: truncation
// is still disabled and chunking/majority-vote semantics are exact.
type LearnedClassifier struct {
	predictor ChunkPredictor
	tokenMax  int
	enc       *tiktoken.Tiktoken
}

// NewLearnedClassifier builds a LearnedClassifier with the given chunk
// predictor and chunk size (DefaultTokenMax if tokenMax <= 0).
func NewLearnedClassifier(predictor ChunkPredictor, tokenMax int) (*LearnedClassifier, error) {
	if tokenMax <= 0 {
		tokenMax = DefaultTokenMax
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &LearnedClassifier{predictor: predictor, tokenMax: tokenMax, enc: enc}, nil
}

// Filter keeps the Methods whose majority chunk label is "slow",
// preserving input order.
func (c *LearnedClassifier) Filter(ctx context.Context, methods []*model.Method) ([]*model.Method, error) {
	var slow []*model.Method
	for _, m := range methods {
		label, err := c.classify(ctx, m.Body)
		if err != nil {
			return nil, err
		}
		if label == LabelSlow {
			slow = append(slow, m)
		}
	}
	return slow, nil
}

func (c *LearnedClassifier) classify(ctx context.Context, body string) (Label, error) {
	tokens := c.enc.Encode(body, nil, nil)
	if len(tokens) == 0 {
		return LabelFast, nil
	}

	votes := map[Label]int{}
	for start := 0; start < len(tokens); start += c.tokenMax {
		end := start + c.tokenMax
		if end > len(tokens) {
			end = len(tokens)
		}
		chunkText := c.enc.Decode(tokens[start:end])
		label, err := c.predictor.PredictLabel(ctx, chunkText)
		if err != nil {
			return LabelErr, err
		}
		votes[label]++
	}
	return majorityLabel(votes), nil
}

// majorityLabel picks the plurality label among the chunk votes,
// breaking ties in favor of "slow" per the candidate order
// [slow, fast] from the original implementation.
func majorityLabel(votes map[Label]int) Label {
	candidates := []Label{LabelSlow, LabelFast}
	best := candidates[0]
	bestCount := votes[candidates[0]]
	for _, l := range candidates[1:] {
		if votes[l] > bestCount {
			bestCount = votes[l]
			best = l
		}
	}
	return best
}
