package pipeline

import (
	"fmt"

	"github.com/jakefearsd/contentpipeline/pkg/agent"
	"github.com/jakefearsd/contentpipeline/pkg/agent/prompt"
	"github.com/jakefearsd/contentpipeline/pkg/approval"
	"github.com/jakefearsd/contentpipeline/pkg/config"
	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/events"
	"github.com/jakefearsd/contentpipeline/pkg/llm"
)

func testBrief() document.Brief {
	return document.Brief{
		Topic:            "Gopher frogs",
		Audience:         "general",
		TargetWordCount:  120,
		RequiredSections: []string{"Habitat"},
	}
}

func testSpecs(qualityCfg config.QualityConfig) AgentSpecs {
	links := prompt.PassthroughProvider{}
	return AgentSpecs{
		Researcher:  agent.ResearcherSpec(),
		Writer:      agent.WriterSpec(links, links, links),
		FactChecker: agent.FactCheckerSpec(agent.FactCheckerConfig{RequireVerifiedClaims: qualityCfg.RequireVerifiedClaims}),
		Editor:      agent.EditorSpec(agent.EditorConfig{MinQualityScore: qualityCfg.MinEditorScore}, links, links),
		Critic:      agent.CriticSpec(),
	}
}

func newTestExecutor(client llm.Client, pipelineCfg config.PipelineConfig, qualityCfg config.QualityConfig, gate approval.Gate, outputDir string) *Executor {
	envelope := agent.NewEnvelope(client)
	specs := testSpecs(qualityCfg)
	pub := agent.PublisherConfig{OutputDir: outputDir, FileExtension: ".wiki"}
	if gate == nil {
		gate = approval.AutoGate{}
	}
	bus := events.NewBus()
	metrics := events.NewMetrics()
	return NewExecutor(envelope, specs, pub, gate, pipelineCfg, qualityCfg, bus, metrics)
}

func researchResponse(facts int, outline int) string {
	var factItems, outlineItems string
	for i := 0; i < facts; i++ {
		if i > 0 {
			factItems += ","
		}
		factItems += fmt.Sprintf(`{"text":"fact %d","source":"field guide"}`, i)
	}
	for i := 0; i < outline; i++ {
		if i > 0 {
			outlineItems += ","
		}
		outlineItems += fmt.Sprintf(`"Section %d"`, i)
	}
	return fmt.Sprintf(`{"facts":[%s],"suggestedOutline":[%s]}`, factItems, outlineItems)
}

func draftResponse(wordCount int) string {
	content := "## Habitat\n"
	for i := 0; i < wordCount; i++ {
		content += "word "
	}
	return fmt.Sprintf(`{"wikiContent":%q,"summary":"a short summary"}`, content)
}

func factCheckResponse(confidence, action string, verified int) string {
	var claims string
	for i := 0; i < verified; i++ {
		if i > 0 {
			claims += ","
		}
		claims += fmt.Sprintf(`"claim %d"`, i)
	}
	return fmt.Sprintf(`{"verifiedClaims":[%s],"overallConfidence":%q,"recommendedAction":%q}`, claims, confidence, action)
}

func editorResponse(wordCount int, score float64) string {
	content := "## Habitat\n"
	for i := 0; i < wordCount; i++ {
		content += "word "
	}
	return fmt.Sprintf(`{"wikiContent":%q,"editSummary":"polished","qualityScore":%f}`, content, score)
}

func criticResponse(action string, overall float64) string {
	return fmt.Sprintf(`{"overallScore":%f,"structureScore":%f,"syntaxScore":%f,"readabilityScore":%f,"recommendedAction":%q}`,
		overall, overall, overall, overall, action)
}

func defaultPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MaxRevisionCycles: 3,
		PhaseTimeout:      0,
	}
}

func defaultQualityConfig() config.QualityConfig {
	return config.QualityConfig{
		MinFactcheckConfidence: document.ConfidenceMedium,
		MinEditorScore:         0.6,
	}
}
