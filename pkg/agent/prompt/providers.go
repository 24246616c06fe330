// Package prompt builds the per-agent user prompts and declares the small
// external-collaborator interfaces (content templates, link suggestions,
// example plans) that the Writer and Editor prompt builders consult. Each
// interface ships a pass-through default so the prompt-construction seam
// stays real and testable without pulling in a templating engine.
package prompt

import (
	"fmt"
	"strings"

	"github.com/jakefearsd/contentpipeline/pkg/document"
)

// ContentTemplateProvider supplies a structural skeleton for a given brief
// (section ordering, tone guidance) that the Writer is told to follow.
type ContentTemplateProvider interface {
	Template(brief document.Brief) string
}

// LinkSuggester ranks candidate internal links for a brief/draft pair.
type LinkSuggester interface {
	SuggestLinks(brief document.Brief, draft *document.ArticleDraft) []string
}

// SeeAlsoSuggester proposes "See also" cross-references for a brief.
type SeeAlsoSuggester interface {
	SuggestSeeAlso(brief document.Brief) []string
}

// ExamplePlanProvider supplies a worked outline example for a topic, used to
// steer the Writer toward the house style.
type ExamplePlanProvider interface {
	ExamplePlan(brief document.Brief) []string
}

// PassthroughProvider is the default, no-op implementation of all four
// collaborator interfaces: it returns brief-derived data with no external
// lookup, the way a disconnected stage would still produce a sane prompt.
type PassthroughProvider struct{}

func (PassthroughProvider) Template(brief document.Brief) string {
	sections := brief.RequiredSections
	if len(sections) == 0 {
		sections = []string{"Introduction", "Overview", "Details", "Summary"}
	}
	return "Suggested section order: " + strings.Join(sections, " -> ")
}

func (PassthroughProvider) SuggestLinks(brief document.Brief, draft *document.ArticleDraft) []string {
	return append([]string(nil), brief.RelatedPages...)
}

func (PassthroughProvider) SuggestSeeAlso(brief document.Brief) []string {
	return append([]string(nil), brief.RelatedPages...)
}

func (PassthroughProvider) ExamplePlan(brief document.Brief) []string {
	return []string{
		fmt.Sprintf("Open with a concise definition of %s.", brief.Topic),
		"Cover background and context.",
		"Detail the core subject matter with supporting facts.",
		"Close with a brief summary and related topics.",
	}
}
