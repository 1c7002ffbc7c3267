package classifier

import (
	"context"
	"testing"

	"github.com/standardbeagle/perfguard/internal/config"
	"github.com/standardbeagle/perfguard/internal/model"
)

type fakeModelClient struct {
	responses []string
	calls     int
	lastPrompt string
}

func (f *fakeModelClient) Send(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	r := f.responses[f.calls%len(f.responses)]
	f.calls++
	return r, nil
}

func (f *fakeModelClient) Available(ctx context.Context, model string) (bool, error) {
	return true, nil
}

func TestPromptClassifierKeepsSlowResponses(t *testing.T) {
	client := &fakeModelClient{responses: []string{"This method is SLOW and should be optimized."}}
	prompts := &config.Prompt{DescriptionGeneration: "Describe: $CODE$"}
	c := NewPromptClassifier(client, prompts)

	methods := []*model.Method{{Name: "a", Body: "def a(): pass"}}
	got, err := c.Filter(context.Background(), methods)
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected method to be kept, got %v", got)
	}
	if client.lastPrompt != "Describe: def a(): pass" {
		t.Errorf("prompt = %q, want placeholder filled", client.lastPrompt)
	}
}

func TestPromptClassifierDropsFastResponses(t *testing.T) {
	client := &fakeModelClient{responses: []string{"This method runs fast."}}
	prompts := &config.Prompt{DescriptionGeneration: "Describe: $CODE$"}
	c := NewPromptClassifier(client, prompts)

	methods := []*model.Method{{Name: "a", Body: "def a(): pass"}}
	got, err := c.Filter(context.Background(), methods)
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected method to be dropped, got %v", got)
	}
}
