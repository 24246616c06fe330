package agent

import (
	"fmt"
	"strings"

	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

const editorSystemPrompt = `You are a copy editor for an online encyclopedia, producing the final, ` +
	`publishable revision of an article: resolve flagged issues, add internal links, and score the result. ` +
	`Respond with a single JSON object and nothing else.`

// EditorConfig carries the quality-gate knob the validator needs
// (§6 quality.minEditorScore).
type EditorConfig struct {
	MinQualityScore float64
}

// EditorSpec builds the Editor agent's envelope specification (§4.5):
// temperature 0.5, producing a FinalArticle. Validator: non-blank content
// and qualityScore >= cfg.MinQualityScore.
func EditorSpec(cfg EditorConfig, links prompt.LinkSuggester, seeAlso prompt.SeeAlsoSuggester) AgentSpec {
	return AgentSpec{
		Role:         "editor",
		SystemPrompt: editorSystemPrompt,
		Temperature:  0.5,
		BuildUserPrompt: func(doc *document.Document) (string, error) {
			return prompt.Editor(doc.Brief(), doc.Draft(), doc.FactCheckReport(), links, seeAlso), nil
		},
		ParseAndValidate: func(doc *document.Document, raw map[string]any) (any, error) {
			return parseFinalArticle(raw, cfg)
		},
		Apply: func(doc *document.Document, artifact any) error {
			a, ok := artifact.(document.FinalArticle)
			if !ok {
				return fmt.Errorf("editor: unexpected artifact type %T", artifact)
			}
			return doc.SetFinalArticle(a)
		},
	}
}

func parseFinalArticle(raw map[string]any, cfg EditorConfig) (document.FinalArticle, error) {
	const role = "editor"

	content, err := requireString(raw, "wikiContent", role)
	if err != nil {
		return document.FinalArticle{}, err
	}
	if strings.TrimSpace(content) == "" {
		return document.FinalArticle{}, &ValidationError{Role: role, Reason: "wikiContent is blank"}
	}

	article := document.FinalArticle{
		WikiContent:  content,
		Metadata:     optionalStringMap(raw, "metadata"),
		EditSummary:  optionalString(raw, "editSummary"),
		QualityScore: optionalFloat(raw, "qualityScore", 0),
		AddedLinks:   optionalStringSlice(raw, "addedLinks"),
	}

	if article.QualityScore < cfg.MinQualityScore {
		return document.FinalArticle{}, &ValidationError{
			Role:   role,
			Reason: fmt.Sprintf("qualityScore %.2f is below the configured floor %.2f", article.QualityScore, cfg.MinQualityScore),
		}
	}

	return article, nil
}
