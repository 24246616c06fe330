// Package config loads pipeline.yaml (§6) the way the teacher loads
// tarsy.yaml: gopkg.in/yaml.v3 for parsing, dario.cat/mergo to overlay user
// values onto built-in defaults, and go-playground/validator/v10 for
// struct-tag validation of the result.
package config

import (
	"time"

	"github.com/jakefearsd/contentpipeline/pkg/document"
)

// Config is the fully resolved, validated configuration for one pipeline
// process — every key in §6's table.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Quality  QualityConfig  `yaml:"quality"`
	Output   OutputConfig   `yaml:"output"`
	LLM      LLMConfig      `yaml:"llm"`
	RunPool  RunPoolConfig  `yaml:"runpool"`
}

// PipelineConfig holds the executor-facing knobs (§6).
type PipelineConfig struct {
	MaxRevisionCycles int             `yaml:"maxRevisionCycles" validate:"gte=0"`
	PhaseTimeout      time.Duration   `yaml:"phaseTimeout" validate:"gt=0"`
	SkipFactCheck     bool            `yaml:"skipFactCheck"`
	SkipCritique      bool            `yaml:"skipCritique"`
	Approval          ApprovalConfig  `yaml:"approval"`
}

// ApprovalConfig selects which phases gate on a human decision and which
// Gate variant answers them (§4.6).
type ApprovalConfig struct {
	AfterResearch  bool `yaml:"afterResearch"`
	AfterDraft     bool `yaml:"afterDraft"`
	AfterFactcheck bool `yaml:"afterFactcheck"`
	BeforePublish  bool `yaml:"beforePublish"`
	AutoApprove    bool `yaml:"autoApprove"`
}

// QualityConfig holds the three validator-facing quality gates (§4.5, §4.8.2).
type QualityConfig struct {
	MinFactcheckConfidence document.Confidence `yaml:"minFactcheckConfidence" validate:"oneof=LOW MEDIUM HIGH"`
	MinEditorScore         float64             `yaml:"minEditorScore" validate:"gte=0,lte=1"`
	RequireVerifiedClaims  bool                `yaml:"requireVerifiedClaims"`
}

// OutputConfig names the Publisher's sink (§4.5, §6).
type OutputConfig struct {
	Directory     string `yaml:"directory" validate:"required"`
	FileExtension string `yaml:"fileExtension" validate:"required"`
}

// LLMConfig selects and configures the LLM Port implementation (§4.3, §6).
type LLMConfig struct {
	Provider    string        `yaml:"provider" validate:"required,oneof=stub grpc"`
	GRPCAddress string        `yaml:"grpcAddress"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	RetryCount  int           `yaml:"retryCount" validate:"gte=0"`
}

// RunPoolConfig sizes the ambient Run Pool (§4.8.5, §6).
type RunPoolConfig struct {
	WorkerCount   int `yaml:"workerCount" validate:"gt=0"`
	QueueCapacity int `yaml:"queueCapacity" validate:"gte=0"`
}

// yamlDoc mirrors Config for unmarshalling user input, except every boolean
// is a pointer so the loader can tell "the user explicitly wrote false"
// apart from "the user didn't mention this key" — mergo.Merge with
// WithOverride cannot make that distinction for plain bools, since false is
// also their zero value. Grounded on the teacher's SlackYAMLConfig.Enabled
// *bool / GitHubYAMLConfig pattern in pkg/config/loader.go.
type yamlDoc struct {
	Pipeline yamlPipeline `yaml:"pipeline"`
	Quality  yamlQuality  `yaml:"quality"`
	Output   OutputConfig `yaml:"output"`
	LLM      LLMConfig    `yaml:"llm"`
	RunPool  RunPoolConfig `yaml:"runpool"`
}

type yamlPipeline struct {
	MaxRevisionCycles int              `yaml:"maxRevisionCycles"`
	PhaseTimeout      time.Duration    `yaml:"phaseTimeout"`
	SkipFactCheck     *bool            `yaml:"skipFactCheck"`
	SkipCritique      *bool            `yaml:"skipCritique"`
	Approval          yamlApproval     `yaml:"approval"`
}

type yamlApproval struct {
	AfterResearch  *bool `yaml:"afterResearch"`
	AfterDraft     *bool `yaml:"afterDraft"`
	AfterFactcheck *bool `yaml:"afterFactcheck"`
	BeforePublish  *bool `yaml:"beforePublish"`
	AutoApprove    *bool `yaml:"autoApprove"`
}

type yamlQuality struct {
	MinFactcheckConfidence document.Confidence `yaml:"minFactcheckConfidence"`
	MinEditorScore         float64             `yaml:"minEditorScore"`
	RequireVerifiedClaims  *bool               `yaml:"requireVerifiedClaims"`
}

// Default returns the built-in defaults named throughout §6
// (maxRevisionCycles=3, phaseTimeout=5m, minFactcheckConfidence=MEDIUM, …).
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxRevisionCycles: 3,
			PhaseTimeout:      5 * time.Minute,
			Approval: ApprovalConfig{
				AutoApprove: true,
			},
		},
		Quality: QualityConfig{
			MinFactcheckConfidence: document.ConfidenceMedium,
			MinEditorScore:         0.7,
			RequireVerifiedClaims:  false,
		},
		Output: OutputConfig{
			Directory:     "./output",
			FileExtension: ".txt",
		},
		LLM: LLMConfig{
			Provider:   "stub",
			Timeout:    5 * time.Minute,
			RetryCount: 0,
		},
		RunPool: RunPoolConfig{
			WorkerCount:   4,
			QueueCapacity: 16,
		},
	}
}
