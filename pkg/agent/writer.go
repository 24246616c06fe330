package agent

import (
	"fmt"
	"strings"

	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

const writerSystemPrompt = `You are a staff writer for an online encyclopedia, turning research into a ` +
	`complete, well-structured wiki article. Respond with a single JSON object and nothing else.`

// WriterSpec builds the Writer agent's envelope specification (§4.5):
// temperature 0.7, producing an ArticleDraft. The validator enforces
// non-blank content, a word count within ±30% of the brief's target, and
// (resolved open question (a)) that every brief.RequiredSections entry
// appears somewhere in the content, case-insensitively — the Writer is
// held to the stricter reading rather than merely being nudged toward it.
// The match is a plain substring check; it does not require the name to
// stand as a heading.
func WriterSpec(tpl prompt.ContentTemplateProvider, plan prompt.ExamplePlanProvider, links prompt.LinkSuggester) AgentSpec {
	return AgentSpec{
		Role:         "writer",
		SystemPrompt: writerSystemPrompt,
		Temperature:  0.7,
		BuildUserPrompt: func(doc *document.Document) (string, error) {
			return prompt.Writer(doc.Brief(), doc.ResearchBrief(), tpl, plan, links), nil
		},
		ParseAndValidate: func(doc *document.Document, raw map[string]any) (any, error) {
			brief := doc.Brief()
			return parseArticleDraft(raw, &brief)
		},
		Apply: func(doc *document.Document, artifact any) error {
			d, ok := artifact.(document.ArticleDraft)
			if !ok {
				return fmt.Errorf("writer: unexpected artifact type %T", artifact)
			}
			return doc.SetDraft(d)
		},
	}
}

// brief is passed in by the closure above so the validator can check word
// count and required sections against the brief in force for this
// document; a nil brief skips those brief-dependent checks.
func parseArticleDraft(raw map[string]any, brief *document.Brief) (document.ArticleDraft, error) {
	const role = "writer"

	content, err := requireString(raw, "wikiContent", role)
	if err != nil {
		return document.ArticleDraft{}, err
	}
	if strings.TrimSpace(content) == "" {
		return document.ArticleDraft{}, &ValidationError{Role: role, Reason: "wikiContent is blank"}
	}

	draft := document.ArticleDraft{
		WikiContent: content,
		Summary:     optionalString(raw, "summary"),
		Categories:  optionalStringSlice(raw, "categories"),
		Metadata:    optionalStringMap(raw, "metadata"),
	}

	if brief != nil {
		if err := validateWordCount(draft.WikiContent, brief.TargetWordCount, role); err != nil {
			return document.ArticleDraft{}, err
		}
		if err := validateRequiredSections(draft.WikiContent, brief.RequiredSections, role); err != nil {
			return document.ArticleDraft{}, err
		}
	}

	return draft, nil
}

func validateWordCount(content string, target int, role string) error {
	if target <= 0 {
		return nil
	}
	count := len(strings.Fields(content))
	low := int(float64(target) * 0.7)
	high := int(float64(target) * 1.3)
	if count < low || count > high {
		return &ValidationError{
			Role:   role,
			Reason: fmt.Sprintf("word count %d is outside ±30%% of target %d (allowed %d-%d)", count, target, low, high),
		}
	}
	return nil
}

func validateRequiredSections(content string, required []string, role string) error {
	if len(required) == 0 {
		return nil
	}
	lower := strings.ToLower(content)
	var missing []string
	for _, section := range required {
		if !strings.Contains(lower, strings.ToLower(section)) {
			missing = append(missing, section)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Role:   role,
			Reason: fmt.Sprintf("missing required section heading(s): %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
