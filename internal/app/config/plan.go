package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// Plan is a batch of audits loaded from a YAML (or JSON) file.
//
//	export_dir: ./out
//	targets:
//	  - instrument: ETH_CRO
//	    interval: 1m
type Plan struct {
	ExportDir string       `yaml:"export_dir,omitempty"`
	Targets   []PlanTarget `yaml:"targets"`
}

// PlanTarget is one instrument/timeframe pair to audit.
type PlanTarget struct {
	Instrument string `yaml:"instrument"`
	Interval   string `yaml:"interval"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return p, nil
}

// Validate checks that the plan names at least one target and every target is auditable.
func (p *Plan) Validate() error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("targets must not be empty")
	}
	seen := make(map[PlanTarget]bool, len(p.Targets))
	for i, t := range p.Targets {
		if t.Instrument == "" {
			return fmt.Errorf("targets[%d].instrument is required", i)
		}
		if _, err := entity.ParseTimeframe(t.Interval); err != nil {
			return fmt.Errorf("targets[%d].interval: %w", i, err)
		}
		if seen[t] {
			return fmt.Errorf("targets[%d]: duplicate %s/%s", i, t.Instrument, t.Interval)
		}
		seen[t] = true
	}
	return nil
}
