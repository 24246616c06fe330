package prompt

import (
	"fmt"
	"strings"

	"github.com/jakefearsd/contentpipeline/pkg/document"
)

// Researcher builds the user prompt for the Researcher agent: the brief
// alone, since research is the first phase and has no prior artifacts to
// draw on.
func Researcher(brief document.Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the topic %q for an audience of %q.\n", brief.Topic, brief.Audience)
	fmt.Fprintf(&b, "Target article length: %d words.\n", brief.TargetWordCount)
	if len(brief.RequiredSections) > 0 {
		fmt.Fprintf(&b, "The article must eventually cover these sections: %s.\n", strings.Join(brief.RequiredSections, ", "))
	}
	b.WriteString("Respond with a JSON object: {\"facts\":[{\"text\":...,\"source\":...}],\"suggestedOutline\":[...],\"relatedPageSuggestions\":[...]}. Include at least 3 facts and at least 2 outline sections.")
	return b.String()
}

// Writer builds the user prompt for the Writer agent, folding in the
// Researcher's output, a content template, an example plan, and link
// suggestions from the given providers.
func Writer(brief document.Brief, research *document.ResearchBrief, tpl ContentTemplateProvider, plan ExamplePlanProvider, links LinkSuggester) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a wiki-style article on %q for an audience of %q, targeting %d words.\n", brief.Topic, brief.Audience, brief.TargetWordCount)

	if research != nil {
		b.WriteString("Use these researched facts:\n")
		for _, f := range research.Facts {
			fmt.Fprintf(&b, "- %s", f.Text)
			if f.Source != "" {
				fmt.Fprintf(&b, " (source: %s)", f.Source)
			}
			b.WriteString("\n")
		}
		if len(research.SuggestedOutline) > 0 {
			fmt.Fprintf(&b, "Suggested outline: %s\n", strings.Join(research.SuggestedOutline, " / "))
		}
	}

	if len(brief.RequiredSections) > 0 {
		fmt.Fprintf(&b, "The article MUST contain a heading for each of these sections (case-insensitive match): %s.\n", strings.Join(brief.RequiredSections, ", "))
	}

	if tpl != nil {
		b.WriteString(tpl.Template(brief) + "\n")
	}
	if plan != nil {
		fmt.Fprintf(&b, "Example plan: %s\n", strings.Join(plan.ExamplePlan(brief), " -> "))
	}
	if links != nil {
		if suggested := links.SuggestLinks(brief, nil); len(suggested) > 0 {
			fmt.Fprintf(&b, "Consider linking to: %s\n", strings.Join(suggested, ", "))
		}
	}

	b.WriteString("Respond with a JSON object: {\"wikiContent\":...,\"summary\":...,\"categories\":[...],\"metadata\":{...}}.")
	return b.String()
}

// FactChecker builds the user prompt for the FactChecker agent from the
// current draft and the research facts it should be checked against.
func FactChecker(brief document.Brief, research *document.ResearchBrief, draft *document.ArticleDraft) string {
	var b strings.Builder
	b.WriteString("Fact-check the following article against the researched facts.\n\n")
	if draft != nil {
		fmt.Fprintf(&b, "Article:\n%s\n\n", draft.WikiContent)
	}
	if research != nil {
		b.WriteString("Researched facts:\n")
		for _, f := range research.Facts {
			fmt.Fprintf(&b, "- %s\n", f.Text)
		}
	}
	b.WriteString("\nRespond with a JSON object: {\"verifiedClaims\":[...],\"questionableClaims\":[{\"claim\":...,\"issue\":...,\"suggestion\":...}],\"consistencyIssues\":[...],\"overallConfidence\":\"LOW|MEDIUM|HIGH\",\"recommendedAction\":\"APPROVE|REVISE|REJECT\"}.")
	return b.String()
}

// Editor builds the user prompt for the Editor agent from the draft, the
// fact-check findings, suggested internal links, and See-Also suggestions.
func Editor(brief document.Brief, draft *document.ArticleDraft, report *document.FactCheckReport, links LinkSuggester, seeAlso SeeAlsoSuggester) string {
	var b strings.Builder
	b.WriteString("Edit the following article into its final publishable form.\n\n")
	if draft != nil {
		fmt.Fprintf(&b, "Draft:\n%s\n\n", draft.WikiContent)
	}
	if report != nil {
		if len(report.QuestionableClaims) > 0 {
			b.WriteString("Address these questionable claims:\n")
			for _, qc := range report.QuestionableClaims {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", qc.Claim, qc.Issue, qc.Suggestion)
			}
		}
		if len(report.ConsistencyIssues) > 0 {
			fmt.Fprintf(&b, "Resolve these consistency issues: %s\n", strings.Join(report.ConsistencyIssues, "; "))
		}
	}
	if links != nil {
		if suggested := links.SuggestLinks(brief, draft); len(suggested) > 0 {
			fmt.Fprintf(&b, "Add internal links to: %s\n", strings.Join(suggested, ", "))
		}
	}
	if seeAlso != nil {
		if suggestions := seeAlso.SuggestSeeAlso(brief); len(suggestions) > 0 {
			fmt.Fprintf(&b, "Add a See Also section referencing: %s\n", strings.Join(suggestions, ", "))
		}
	}
	b.WriteString("\nRespond with a JSON object: {\"wikiContent\":...,\"metadata\":{...},\"editSummary\":...,\"qualityScore\":0.0-1.0,\"addedLinks\":[...]}.")
	return b.String()
}

// Critic builds the user prompt for the Critic agent from the final,
// edited article.
func Critic(brief document.Brief, article *document.FinalArticle) string {
	var b strings.Builder
	b.WriteString("Critique the following finished article for structure, syntax, readability, and style.\n\n")
	if article != nil {
		fmt.Fprintf(&b, "Article:\n%s\n\n", article.WikiContent)
	}
	b.WriteString("Respond with a JSON object: {\"overallScore\":0.0-1.0,\"structureScore\":0.0-1.0,\"syntaxScore\":0.0-1.0,\"readabilityScore\":0.0-1.0,\"structureIssues\":[...],\"syntaxIssues\":[...],\"styleIssues\":[...],\"suggestions\":[...],\"recommendedAction\":\"APPROVE|REVISE|REJECT\"}.")
	return b.String()
}
