package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/orchestrator"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunConfig represents the configuration section of a batch report
type RunConfig struct {
	Provider  string          `yaml:"provider"`
	Model     string          `yaml:"model,omitempty"`
	Views     []models.ViewID `yaml:"views"`
	Timestamp string          `yaml:"timestamp"`
}

// ViewResult is the resolution of one view within one step
type ViewResult struct {
	View       models.ViewID `yaml:"view"`
	Status     string        `yaml:"status"`
	Error      string        `yaml:"error,omitempty"`
	DurationMS int64         `yaml:"durationms"`
}

// Step is one applied modification and its per-view results
type Step struct {
	Index        int             `yaml:"index"`
	Category     models.Category `yaml:"category"`
	DisplayValue string          `yaml:"displayvalue"`
	Instruction  string          `yaml:"instruction"`
	Results      []ViewResult    `yaml:"results"`
}

// Report is the record of a batch edit run
type Report struct {
	Config RunConfig `yaml:"config"`
	Steps  []Step    `yaml:"steps"`
}

// Row is the flattened report layout used for Parquet export
type Row struct {
	Step         int    `parquet:"step"`
	Category     string `parquet:"category"`
	DisplayValue string `parquet:"display_value"`
	Instruction  string `parquet:"instruction"`
	View         string `parquet:"view"`
	Status       string `parquet:"status"`
	Error        string `parquet:"error,optional"`
	DurationMS   int64  `parquet:"duration_ms"`
}

func New(provider, model string, views []models.ViewID) *Report {
	return &Report{
		Config: RunConfig{
			Provider:  provider,
			Model:     model,
			Views:     views,
			Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		},
	}
}

// Add records the outcomes of one applied modification
func (r *Report) Add(mod models.Modification, outcomes []orchestrator.Outcome) {
	step := Step{
		Index:        len(r.Steps) + 1,
		Category:     mod.Category,
		DisplayValue: mod.DisplayValue,
		Instruction:  mod.Instruction,
		Results:      make([]ViewResult, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		result := ViewResult{
			View:       o.View,
			Status:     StatusOK,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			result.Status = StatusFailed
			result.Error = o.Err.Error()
		}
		step.Results = append(step.Results, result)
	}
	r.Steps = append(r.Steps, step)
}

// Failures counts failed view results across every step
func (r *Report) Failures() int {
	n := 0
	for _, s := range r.Steps {
		for _, res := range s.Results {
			if res.Status == StatusFailed {
				n++
			}
		}
	}
	return n
}

// Rows flattens the report to one row per step and view
func (r *Report) Rows() []Row {
	var rows []Row
	for _, s := range r.Steps {
		for _, res := range s.Results {
			rows = append(rows, Row{
				Step:         s.Index,
				Category:     string(s.Category),
				DisplayValue: s.DisplayValue,
				Instruction:  s.Instruction,
				View:         string(res.View),
				Status:       res.Status,
				Error:        res.Error,
				DurationMS:   res.DurationMS,
			})
		}
	}
	return rows
}

// Save writes the report as YAML or Parquet depending on the file extension
func (r *Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		if err := parquet.WriteFile(path, r.Rows()); err != nil {
			return fmt.Errorf("failed to write parquet report: %w", err)
		}
		return nil
	case ".yaml", ".yml", "":
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write YAML file: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported report format %q (want .yaml or .parquet)", filepath.Ext(path))
	}
}
