package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/hclconfig"
	"github.com/specialistvlad/pipeprint/internal/policy"
)

// Load reads the configured files.
func (a *App) Load(ctx context.Context) (*hclconfig.Document, error) {
	ctx = a.withLogger(ctx)
	doc, err := a.loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a.logger.Debug("Configuration loaded.", "files", len(doc.Files))
	return doc, nil
}

// environment merges the file environment with the configured overrides.
func (a *App) environment(doc *hclconfig.Document) policy.Environment {
	var env policy.Environment
	if doc.Environment != nil {
		env = *doc.Environment
	}
	return mergeEnvironment(env, a.config.Environment)
}

func mergeEnvironment(base, override policy.Environment) policy.Environment {
	if override.Account != "" {
		base.Account = override.Account
	}
	if override.Region != "" {
		base.Region = override.Region
	}
	if override.Partition != "" {
		base.Partition = override.Partition
	}
	return base
}

// Synthesize loads the configuration, builds the blueprint, checks the
// rendered document against the blueprint schema and writes it out.
func (a *App) Synthesize(ctx context.Context) (*blueprint.Blueprint, error) {
	ctx = a.withLogger(ctx)

	doc, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}

	bp, out, err := a.build(ctx, *doc.Pipeline, a.environment(doc), a.config.Format)
	if err != nil {
		return nil, err
	}

	if err := a.write(out); err != nil {
		return nil, err
	}
	a.logger.Info("Blueprint written.", "pipeline", bp.Name, "format", a.config.Format, "out", a.destination())
	return bp, nil
}

// build constructs, self-checks and renders a blueprint.
func (a *App) build(ctx context.Context, cfg config.PipelineConfig, env policy.Environment, format blueprint.Format) (*blueprint.Blueprint, []byte, error) {
	bp, err := a.builder.Build(ctx, cfg, env)
	if err != nil {
		return nil, nil, err
	}

	rendered, err := blueprint.RenderJSON(bp)
	if err != nil {
		return nil, nil, err
	}
	problems, err := blueprint.Validate(rendered)
	if err != nil {
		return nil, nil, err
	}
	if len(problems) > 0 {
		return nil, nil, fmt.Errorf("blueprint %s does not match its schema:\n- %s", bp.Name, strings.Join(problems, "\n- "))
	}

	if format == blueprint.FormatJSON {
		return bp, rendered, nil
	}
	out, err := blueprint.Render(bp, format)
	if err != nil {
		return nil, nil, err
	}
	return bp, out, nil
}

func (a *App) write(out []byte) error {
	if a.config.OutPath == "" {
		_, err := a.outW.Write(out)
		return err
	}
	if err := os.WriteFile(a.config.OutPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write blueprint: %w", err)
	}
	return nil
}

func (a *App) destination() string {
	if a.config.OutPath == "" {
		return "stdout"
	}
	return a.config.OutPath
}

// Validate loads the configuration and reports its problems without
// building. Environment problems are reported as errors.
func (a *App) Validate(ctx context.Context) (*config.ValidationResult, error) {
	ctx = a.withLogger(ctx)

	doc, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}

	env := a.environment(doc)
	result := doc.Pipeline.Validate()
	if err := env.Validate(); err != nil {
		result.Errors = append(result.Errors, strings.Split(err.Error(), "\n")...)
	}
	for _, w := range result.Warnings {
		a.logger.Warn("Configuration warning.", "warning", w)
	}
	if result.IsValid() {
		// Assembly catches what field validation cannot, such as empty templates.
		if _, _, err := a.build(ctx, *doc.Pipeline, env, blueprint.FormatJSON); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}
	a.logger.Debug("Validation finished.", "errors", len(result.Errors), "warnings", len(result.Warnings))
	return result, nil
}
