package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/ctxlog"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/specialistvlad/pipeprint/internal/policy"
	"github.com/specialistvlad/pipeprint/internal/resolve"
	"github.com/specialistvlad/pipeprint/internal/stage"
)

// Build constructs the blueprint for cfg. cfg is not modified.
func (b *Builder) Build(ctx context.Context, cfg config.PipelineConfig, env policy.Environment) (*blueprint.Blueprint, error) {
	ctx, logger := ctxlog.With(ctx, "service", cfg.Service)
	logger.Debug("Build: Starting blueprint construction.")

	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment environment: %w", err)
	}
	if err := config.ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		logger.Warn("Build: Configuration warning.", "warning", w)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Configuration validated.")

	resolveFn := b.resolve
	var store *deferred.ParameterStore
	if resolveFn == nil {
		store = deferred.NewParameterStore()
		resolveFn = store.Resolve
	}
	resolved := resolve.Resolve(ctx, cfg, resolveFn)

	statements := policy.Build(resolved.ParameterPaths, resolved.ArtifactBucket, env)
	logger.Debug("Build: Policy derived.", "statement_count", len(statements))

	stages, err := stage.Assemble(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble pipeline %s: %w", resolved.DisplayName, err)
	}

	bp := &blueprint.Blueprint{
		Name:                     resolved.DisplayName,
		RestartExecutionOnUpdate: true,
		BuildProject: blueprint.BuildProject{
			Name:             resolved.Service,
			Description:      BuildProjectDescription,
			Image:            resolved.Build.Image,
			ComputeType:      resolved.Build.ComputeType,
			BuildSpec:        resolved.BuildSpec,
			PolicyStatements: statements,
		},
		Stages: stages,
	}
	if store != nil {
		bp.Parameters = store.Parameters()
	}

	logger.Info("Build: Blueprint construction successful.", "pipeline", bp.Name, "stage_count", len(bp.Stages))
	return bp, nil
}
