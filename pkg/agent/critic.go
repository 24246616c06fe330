package agent

import (
	"fmt"

	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

const criticSystemPrompt = `You are a senior editor giving a final quality critique of a finished ` +
	`encyclopedia article: score its structure, syntax, and readability, and recommend whether it is ready ` +
	`to publish. Respond with a single JSON object and nothing else.`

// CriticSpec builds the Critic agent's envelope specification (§4.5):
// temperature 0.3, producing a CriticReport. Validator: recommendedAction
// parses. The four scores are optional: a missing or non-numeric score
// defaults to 0, and any score is clamped to [0,1] rather than rejected
// (§4.4.4).
func CriticSpec() AgentSpec {
	return AgentSpec{
		Role:         "critic",
		SystemPrompt: criticSystemPrompt,
		Temperature:  0.3,
		BuildUserPrompt: func(doc *document.Document) (string, error) {
			return prompt.Critic(doc.Brief(), doc.FinalArticle()), nil
		},
		ParseAndValidate: func(doc *document.Document, raw map[string]any) (any, error) {
			return parseCriticReport(raw)
		},
		Apply: func(doc *document.Document, artifact any) error {
			r, ok := artifact.(document.CriticReport)
			if !ok {
				return fmt.Errorf("critic: unexpected artifact type %T", artifact)
			}
			return doc.SetCriticReport(r)
		},
	}
}

func parseCriticReport(raw map[string]any) (document.CriticReport, error) {
	const role = "critic"

	actionStr, err := requireString(raw, "recommendedAction", role)
	if err != nil {
		return document.CriticReport{}, err
	}
	action := document.RecommendedAction(actionStr)
	if !action.IsValid() {
		return document.CriticReport{}, &ParseError{Role: role, Field: "recommendedAction", Err: fmt.Errorf("unrecognized action %q", actionStr)}
	}

	return document.CriticReport{
		OverallScore:      optionalFloat(raw, "overallScore", 0),
		StructureScore:    optionalFloat(raw, "structureScore", 0),
		SyntaxScore:       optionalFloat(raw, "syntaxScore", 0),
		ReadabilityScore:  optionalFloat(raw, "readabilityScore", 0),
		StructureIssues:   optionalStringSlice(raw, "structureIssues"),
		SyntaxIssues:      optionalStringSlice(raw, "syntaxIssues"),
		StyleIssues:       optionalStringSlice(raw, "styleIssues"),
		Suggestions:       optionalStringSlice(raw, "suggestions"),
		RecommendedAction: action,
	}, nil
}
