package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/carcustomizer/internal/bootstrap"
	"github.com/lehigh-university-libraries/carcustomizer/internal/config"
	"github.com/lehigh-university-libraries/carcustomizer/internal/images"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/orchestrator"
	"github.com/lehigh-university-libraries/carcustomizer/internal/prompts"
	"github.com/lehigh-university-libraries/carcustomizer/internal/recipe"
	"github.com/lehigh-university-libraries/carcustomizer/internal/registry"
	"github.com/lehigh-university-libraries/carcustomizer/internal/report"
	"github.com/spf13/cobra"
)

type editOptions struct {
	front, side, rear string
	mods              []string
	recipePath        string
	outputDir         string
	reportPath        string
}

func newEditCmd() *cobra.Command {
	var opts editOptions

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply modifications to car photos from the command line",
		Long: `Loads up to three photos of a car (front, side and rear), applies each
modification to every view in order, and writes the final image of every
view plus a batch report.

Modifications compound: each one is applied on top of the previous result.
A view whose edit fails keeps its previous image and is retried by the next
modification. Photos may be local paths or http(s) URLs.

Selections use the form category[:key=value,...], for example
paint:color=Cherry Red,part=hood or wheels:w2. Run "carcustomizer options"
for the preset catalog.`,
		Example: `  # Repaint a car from two angles
  carcustomizer edit --front front.jpg --rear rear.jpg --mod "paint:color=Midnight Blue"

  # Run a recipe and export the report as parquet
  carcustomizer edit --recipe build.yaml --out renders --report renders/report.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return runEdit(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.front, "front", "", "Front view photo (path or URL)")
	cmd.Flags().StringVar(&opts.side, "side", "", "Side view photo (path or URL)")
	cmd.Flags().StringVar(&opts.rear, "rear", "", "Rear view photo (path or URL)")
	cmd.Flags().StringArrayVarP(&opts.mods, "mod", "m", nil, "Modification to apply, repeatable (e.g. paint:color=Cherry Red)")
	cmd.Flags().StringVar(&opts.recipePath, "recipe", "", "YAML recipe of views and steps")
	cmd.Flags().StringVarP(&opts.outputDir, "out", "o", "output", "Directory for edited images")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Batch report path, .yaml or .parquet (default <out>/report.yaml)")
	addProviderFlags(cmd.Flags())

	return cmd
}

func runEdit(cmd *cobra.Command, cfg *config.Config, opts editOptions) error {
	ctx := cmd.Context()

	plan := &recipe.Recipe{}
	if opts.recipePath != "" {
		var err error
		if plan, err = recipe.Load(opts.recipePath); err != nil {
			return err
		}
	}

	selections := make([]prompts.Selection, 0, len(opts.mods))
	for _, m := range opts.mods {
		sel, err := prompts.ParseSelection(m)
		if err != nil {
			return fmt.Errorf("invalid --mod %q: %w", m, err)
		}
		selections = append(selections, sel)
	}
	plan.Merge(map[models.ViewID]string{
		models.ViewFront: opts.front,
		models.ViewSide:  opts.side,
		models.ViewRear:  opts.rear,
	}, selections)

	if len(plan.Views) == 0 {
		return fmt.Errorf("at least one of --front, --side or --rear (or recipe views) is required")
	}
	if len(plan.Steps) == 0 {
		return fmt.Errorf("at least one --mod (or recipe step) is required")
	}

	// Resolve every step up front so a bad selection fails before any remote call
	catalog := prompts.Default()
	mods := make([]models.Modification, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		mod, err := catalog.Resolve(step)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		mods = append(mods, mod)
	}

	fetcher := images.NewFetcher()
	fetcher.MaxBytes = cfg.Server.MaxUploadBytes
	views, err := bootstrap.Bootstrap(ctx, fetcher.FetchAll(ctx, plan.Views), bootstrap.Options{MaxBytes: cfg.Server.MaxUploadBytes})
	if err != nil {
		return err
	}

	reg, err := registry.New(views)
	if err != nil {
		return err
	}

	editor, closeEditor, err := newEditor(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeEditor(); err != nil {
			slog.Warn("Unable to close provider client", "err", err)
		}
	}()

	orch := orchestrator.New(reg, editor)
	batch := report.New(cfg.Provider, cfg.ProviderConfig().Model, reg.Snapshot().IDs())

	for i, mod := range mods {
		slog.Info("Applying step", "step", i+1, "of", len(mods), "category", mod.Category, "value", mod.DisplayValue)
		outcomes, err := orch.Apply(ctx, mod)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		batch.Add(mod, outcomes)
	}

	if err := writeViews(opts.outputDir, reg.GetAll()); err != nil {
		return err
	}

	reportPath := opts.reportPath
	if reportPath == "" {
		reportPath = filepath.Join(opts.outputDir, "report.yaml")
	}
	if err := batch.Save(reportPath); err != nil {
		return err
	}

	absPath, _ := filepath.Abs(reportPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Edited %d views over %d steps, report saved to: %s\n", len(views), len(mods), absPath)

	if n := batch.Failures(); n > 0 {
		return fmt.Errorf("%d view edits failed, see %s", n, reportPath)
	}
	return nil
}

func writeViews(dir string, views []models.View) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, v := range views {
		path := filepath.Join(dir, string(v.ID)+v.Current.Extension())
		if err := os.WriteFile(path, v.Current.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s view: %w", v.ID, err)
		}
		slog.Info("Wrote view", "view", v.ID, "path", path, "status", v.Status.Kind)
	}
	return nil
}
