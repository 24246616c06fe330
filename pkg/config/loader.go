package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads pipeline.yaml at path, overlays it onto Default() (user values
// win, unset fields keep the built-in default), and validates the result —
// the same load -> merge -> validate shape the teacher's pkg/config uses
// for tarsy.yaml, generalized from tarsy's component registries to this
// pipeline's flat option set.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := validateStruct(cfg); err != nil {
				return nil, fmt.Errorf("config: default configuration is invalid: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	// Non-boolean fields: a straight mergo overlay is safe, since their zero
	// values ("" / 0) double as "not set in the YAML" for this config.
	overlay := Config{
		Pipeline: PipelineConfig{
			MaxRevisionCycles: doc.Pipeline.MaxRevisionCycles,
			PhaseTimeout:      doc.Pipeline.PhaseTimeout,
		},
		Quality: QualityConfig{
			MinFactcheckConfidence: doc.Quality.MinFactcheckConfidence,
			MinEditorScore:         doc.Quality.MinEditorScore,
		},
		Output: doc.Output,
		LLM:    doc.LLM,
		RunPool: doc.RunPool,
	}
	if err := mergo.Merge(cfg, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: merging %s over defaults: %w", path, err)
	}

	// Booleans are resolved by hand so an explicit `false` in the YAML wins
	// over a `true` default (mergo can't tell false-the-value from
	// false-the-zero-value).
	resolveBool(&cfg.Pipeline.SkipFactCheck, doc.Pipeline.SkipFactCheck)
	resolveBool(&cfg.Pipeline.SkipCritique, doc.Pipeline.SkipCritique)
	resolveBool(&cfg.Pipeline.Approval.AfterResearch, doc.Pipeline.Approval.AfterResearch)
	resolveBool(&cfg.Pipeline.Approval.AfterDraft, doc.Pipeline.Approval.AfterDraft)
	resolveBool(&cfg.Pipeline.Approval.AfterFactcheck, doc.Pipeline.Approval.AfterFactcheck)
	resolveBool(&cfg.Pipeline.Approval.BeforePublish, doc.Pipeline.Approval.BeforePublish)
	resolveBool(&cfg.Pipeline.Approval.AutoApprove, doc.Pipeline.Approval.AutoApprove)
	resolveBool(&cfg.Quality.RequireVerifiedClaims, doc.Quality.RequireVerifiedClaims)

	if err := validateStruct(cfg); err != nil {
		return nil, fmt.Errorf("config: %s failed validation: %w", path, err)
	}

	return cfg, nil
}

// resolveBool overwrites *dst with *src when the YAML document actually set
// the field (src != nil), leaving the built-in default untouched otherwise.
func resolveBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func validateStruct(cfg *Config) error {
	v := validator.New()
	return v.Struct(cfg)
}
