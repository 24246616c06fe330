package agent

import (
	"fmt"

	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

const factCheckerSystemPrompt = `You are a rigorous fact checker for an online encyclopedia. Compare the ` +
	`article against the supplied research and flag anything unverifiable or inconsistent. Respond with a ` +
	`single JSON object and nothing else.`

// FactCheckerConfig carries the one quality-gate knob the validator needs
// (§6 quality.requireVerifiedClaims). The quality.minFactcheckConfidence
// floor is applied by pkg/pipeline's revision logic, not here.
type FactCheckerConfig struct {
	RequireVerifiedClaims bool
}

// FactCheckerSpec builds the FactChecker agent's envelope specification
// (§4.5): temperature 0.1, producing a FactCheckReport. The validator only
// requires overallConfidence and recommendedAction to parse, plus (when
// cfg.RequireVerifiedClaims is true) either a non-empty verifiedClaims list
// or a non-APPROVE recommendation — the confidence-floor-vs-revision
// decision itself belongs to the Pipeline Executor (§4.8.2), not this
// validator.
func FactCheckerSpec(cfg FactCheckerConfig) AgentSpec {
	return AgentSpec{
		Role:         "factchecker",
		SystemPrompt: factCheckerSystemPrompt,
		Temperature:  0.1,
		BuildUserPrompt: func(doc *document.Document) (string, error) {
			return prompt.FactChecker(doc.Brief(), doc.ResearchBrief(), doc.Draft()), nil
		},
		ParseAndValidate: func(doc *document.Document, raw map[string]any) (any, error) {
			return parseFactCheckReport(raw, cfg)
		},
		Apply: func(doc *document.Document, artifact any) error {
			r, ok := artifact.(document.FactCheckReport)
			if !ok {
				return fmt.Errorf("factchecker: unexpected artifact type %T", artifact)
			}
			return doc.SetFactCheckReport(r)
		},
	}
}

func parseFactCheckReport(raw map[string]any, cfg FactCheckerConfig) (document.FactCheckReport, error) {
	const role = "factchecker"

	verified := optionalStringSlice(raw, "verifiedClaims")

	var questionable []document.QuestionableClaim
	if rawItems, ok := raw["questionableClaims"].([]any); ok {
		for _, ri := range rawItems {
			m, ok := ri.(map[string]any)
			if !ok {
				continue
			}
			claim, _ := m["claim"].(string)
			if claim == "" {
				continue
			}
			issue, _ := m["issue"].(string)
			suggestion, _ := m["suggestion"].(string)
			questionable = append(questionable, document.QuestionableClaim{Claim: claim, Issue: issue, Suggestion: suggestion})
		}
	}

	consistency := optionalStringSlice(raw, "consistencyIssues")

	confStr, err := requireString(raw, "overallConfidence", role)
	if err != nil {
		return document.FactCheckReport{}, err
	}
	confidence := document.Confidence(confStr)
	if !confidence.IsValid() {
		return document.FactCheckReport{}, &ParseError{Role: role, Field: "overallConfidence", Err: fmt.Errorf("unrecognized confidence %q", confStr)}
	}

	actionStr, err := requireString(raw, "recommendedAction", role)
	if err != nil {
		return document.FactCheckReport{}, err
	}
	action := document.RecommendedAction(actionStr)
	if !action.IsValid() {
		return document.FactCheckReport{}, &ParseError{Role: role, Field: "recommendedAction", Err: fmt.Errorf("unrecognized action %q", actionStr)}
	}

	report := document.FactCheckReport{
		VerifiedClaims:     verified,
		QuestionableClaims: questionable,
		ConsistencyIssues:  consistency,
		OverallConfidence:  confidence,
		RecommendedAction:  action,
	}

	if cfg.RequireVerifiedClaims && len(report.VerifiedClaims) == 0 && action == document.ActionApprove {
		return document.FactCheckReport{}, &ValidationError{
			Role:   role,
			Reason: "requireVerifiedClaims is set but verifiedClaims is empty and recommendedAction is APPROVE",
		}
	}

	return report, nil
}
