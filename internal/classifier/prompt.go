package classifier

import (
	"context"
	"strings"

	"github.com/standardbeagle/perfguard/internal/config"
	"github.com/standardbeagle/perfguard/internal/model"
)

// PromptClassifier sends each Method body through a generative model
// and keeps the Method iff the case-insensitive response contains
// "slow" (§4.3). §6 fixes the Prompt file's key set at exactly four
// entries with no dedicated classification template (unlike the
// original aioptim AIClassifier, which used its own CODE_CLASSIFY
// prompt) — PromptClassifier reuses the description_generation
// template, filling only its $CODE$ placeholder, a deliberate
// deviation recorded in DESIGN.md.
type PromptClassifier struct {
	client   model.ModelClient
	template string
}

// NewPromptClassifier builds a PromptClassifier from the loaded Prompt
// file's description_generation template.
func NewPromptClassifier(client model.ModelClient, prompts *config.Prompt) *PromptClassifier {
	return &PromptClassifier{client: client, template: prompts.DescriptionGeneration}
}

// Filter keeps Methods whose model response mentions "slow",
// preserving input order.
func (p *PromptClassifier) Filter(ctx context.Context, methods []*model.Method) ([]*model.Method, error) {
	var slow []*model.Method
	for _, m := range methods {
		prompt := config.Fill(p.template, map[string]string{"$CODE$": m.Body})
		resp, err := p.client.Send(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(resp), "slow") {
			slow = append(slow, m)
		}
	}
	return slow, nil
}
