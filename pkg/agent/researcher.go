package agent

import (
	"fmt"

	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

const researcherSystemPrompt = `You are a meticulous research assistant for an online encyclopedia. ` +
	`Given a topic brief, gather well-attributed facts and propose an article outline. ` +
	`Respond with a single JSON object and nothing else.`

// ResearcherSpec builds the Researcher agent's envelope specification
// (§4.5): temperature 0.3, producing a ResearchBrief, validated to require
// at least 3 facts and at least 2 outline sections.
func ResearcherSpec() AgentSpec {
	return AgentSpec{
		Role:         "researcher",
		SystemPrompt: researcherSystemPrompt,
		Temperature:  0.3,
		BuildUserPrompt: func(doc *document.Document) (string, error) {
			return prompt.Researcher(doc.Brief()), nil
		},
		ParseAndValidate: func(doc *document.Document, raw map[string]any) (any, error) {
			return parseResearchBrief(raw)
		},
		Apply: func(doc *document.Document, artifact any) error {
			rb, ok := artifact.(document.ResearchBrief)
			if !ok {
				return fmt.Errorf("researcher: unexpected artifact type %T", artifact)
			}
			return doc.SetResearchBrief(rb)
		},
	}
}

func parseResearchBrief(raw map[string]any) (any, error) {
	const role = "researcher"

	rawFacts, ok := raw["facts"].([]any)
	if !ok {
		return nil, &ParseError{Role: role, Field: "facts", Err: fmt.Errorf("missing or malformed required field")}
	}
	facts := make([]document.Fact, 0, len(rawFacts))
	for _, rf := range rawFacts {
		fm, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		text, _ := fm["text"].(string)
		if text == "" {
			continue
		}
		source, _ := fm["source"].(string)
		facts = append(facts, document.Fact{Text: text, Source: source})
	}

	outline, err := requireStringSlice(raw, "suggestedOutline", role)
	if err != nil {
		return nil, err
	}
	related := optionalStringSlice(raw, "relatedPageSuggestions")

	rb := document.ResearchBrief{
		Facts:            facts,
		SuggestedOutline: outline,
		RelatedPages:     related,
	}

	if len(rb.Facts) < 3 {
		return nil, &ValidationError{Role: role, Reason: fmt.Sprintf("need at least 3 facts, got %d", len(rb.Facts))}
	}
	if len(rb.SuggestedOutline) < 2 {
		return nil, &ValidationError{Role: role, Reason: fmt.Sprintf("need at least 2 outline sections, got %d", len(rb.SuggestedOutline))}
	}

	return rb, nil
}
