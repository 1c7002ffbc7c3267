package classifier

import (
	"context"
	"strings"
	"testing"

	"github.com/standardbeagle/perfguard/internal/model"
)

// sequencePredictor returns labels in order, cycling once the list is
// exhausted, letting tests control chunk votes deterministically
// without a real model.
type sequencePredictor struct {
	labels []Label
	calls  int
}

func (p *sequencePredictor) PredictLabel(ctx context.Context, chunkText string) (Label, error) {
	l := p.labels[p.calls%len(p.labels)]
	p.calls++
	return l, nil
}

func TestLearnedClassifierKeepsSlowMajority(t *testing.T) {
	predictor := &sequencePredictor{labels: []Label{LabelSlow}}
	c, err := NewLearnedClassifier(predictor, 450)
	if err != nil {
		t.Fatalf("NewLearnedClassifier error: %v", err)
	}

	methods := []*model.Method{{Name: "a", Body: "def a(): pass"}}
	got, err := c.Filter(context.Background(), methods)
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected method to be kept as slow, got %v", got)
	}
}

func TestLearnedClassifierDropsFastMajority(t *testing.T) {
	predictor := &sequencePredictor{labels: []Label{LabelFast}}
	c, err := NewLearnedClassifier(predictor, 450)
	if err != nil {
		t.Fatalf("NewLearnedClassifier error: %v", err)
	}

	methods := []*model.Method{{Name: "a", Body: "def a(): pass"}}
	got, err := c.Filter(context.Background(), methods)
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected method to be dropped as fast, got %v", got)
	}
}

func TestLearnedClassifierChunksLargeBodies(t *testing.T) {
	predictor := &sequencePredictor{labels: []Label{LabelFast}}
	c, err := NewLearnedClassifier(predictor, 4) // tiny chunk size forces multiple chunks
	if err != nil {
		t.Fatalf("NewLearnedClassifier error: %v", err)
	}

	body := strings.Repeat("def handler(): return compute_something_slow() ", 50)
	methods := []*model.Method{{Name: "big", Body: body}}
	if _, err := c.Filter(context.Background(), methods); err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	if predictor.calls < 2 {
		t.Errorf("expected body to be split into multiple chunks, predictor called %d time(s)", predictor.calls)
	}
}

func TestLearnedClassifierPreservesInputOrder(t *testing.T) {
	predictor := &sequencePredictor{labels: []Label{LabelSlow}}
	c, err := NewLearnedClassifier(predictor, 450)
	if err != nil {
		t.Fatalf("NewLearnedClassifier error: %v", err)
	}

	methods := []*model.Method{
		{Name: "first", Body: "def first(): pass"},
		{Name: "second", Body: "def second(): pass"},
	}
	got, err := c.Filter(context.Background(), methods)
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "first" || got[1].Name != "second" {
		t.Errorf("Filter did not preserve order: %+v", got)
	}
}

func TestMajorityLabelTieBreaksTowardSlow(t *testing.T) {
	votes := map[Label]int{LabelSlow: 2, LabelFast: 2}
	if got := majorityLabel(votes); got != LabelSlow {
		t.Errorf("majorityLabel(tie) = %v, want LabelSlow", got)
	}
}

func TestMajorityLabelFastWins(t *testing.T) {
	votes := map[Label]int{LabelSlow: 1, LabelFast: 3}
	if got := majorityLabel(votes); got != LabelFast {
		t.Errorf("majorityLabel = %v, want LabelFast", got)
	}
}
