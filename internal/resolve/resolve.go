// Package resolve turns a PipelineConfig into its resolved form, where every
// top-level string field is either a literal or a deferred handle obtained
// from the parameter-store collaborator.
package resolve

import (
	"context"

	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/ctxlog"
	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// Config is a PipelineConfig after indirect references have been replaced.
// Nested stage descriptors, lists and the secret are copied unchanged.
type Config struct {
	Service           deferred.Value
	Owner             deferred.Value
	Repo              deferred.Value
	Branch            deferred.Value
	ToolsOwner        deferred.Value
	ToolsRepo         deferred.Value
	ToolsBranch       deferred.Value
	Email             deferred.Value
	ArtifactBucket    deferred.Value
	BuildSpec         deferred.Value
	PackageTokenParam deferred.Value
	ApprovalMessage   deferred.Value

	// DisplayName is derived from the literal service name.
	DisplayName string

	SourceSecret   deferred.Secret
	ParameterPaths []string
	Build          config.BuildEnvironment
	DevStage       config.DeployStageSpec
	Live           config.LiveStage
}

// Resolve scans the top-level string fields of cfg. A value carrying the
// indirection prefix is replaced by resolve(path); any other value is kept
// as a literal. cfg itself is not modified.
func Resolve(ctx context.Context, cfg config.PipelineConfig, resolve deferred.ResolveFunc) Config {
	logger := ctxlog.FromContext(ctx)

	field := func(name, raw string) deferred.Value {
		path, ok := deferred.Split(raw)
		if !ok {
			return deferred.Literal(raw)
		}
		logger.Debug("Deferring configuration value to the parameter store.", "field", name, "path", path)
		return deferred.FromHandle(resolve(path))
	}

	live := cfg.Live
	if live == nil {
		live = config.NoLiveStage{}
	}

	return Config{
		Service:           field("service", cfg.Service),
		Owner:             field("owner", cfg.Owner),
		Repo:              field("repo", cfg.Repo),
		Branch:            field("branch", cfg.Branch),
		ToolsOwner:        field("tools_owner", cfg.EffectiveToolsOwner()),
		ToolsRepo:         field("tools_repo", cfg.ToolsRepo),
		ToolsBranch:       field("tools_branch", cfg.ToolsBranch),
		Email:             field("email", cfg.Email),
		ArtifactBucket:    field("artifact_bucket", cfg.ArtifactBucket),
		BuildSpec:         field("build_spec", cfg.BuildSpec),
		PackageTokenParam: field("package_token_param", cfg.PackageTokenParam),
		ApprovalMessage:   field("approval_message", cfg.ApprovalMessage),

		DisplayName: cfg.DisplayName(),

		SourceSecret:   cfg.SourceSecret,
		ParameterPaths: append([]string(nil), cfg.ParameterPaths...),
		Build:          cfg.Build,
		DevStage:       cfg.DevStage,
		Live:           live,
	}
}
