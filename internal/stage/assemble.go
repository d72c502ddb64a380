// Package stage assembles the ordered stages of a pipeline and the artifacts
// connecting them.
package stage

import (
	"context"

	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/ctxlog"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/specialistvlad/pipeprint/internal/resolve"
)

// Capabilities requested by every stack deployment.
var Capabilities = []cftypes.Capability{
	cftypes.CapabilityCapabilityAutoExpand,
	cftypes.CapabilityCapabilityNamedIam,
}

// CommitInfo is the deployment parameter identifying the deployed revision.
func CommitInfo() deferred.Value {
	return deferred.Join(
		deferred.Literal(BranchNameVariable),
		deferred.Literal("_"),
		deferred.Literal(CommitIDVariable),
	)
}

// Assemble builds Source, Build and DeployDev, followed by DeployLive when
// the configuration has a gated live stage. An empty template path on either
// deploy stage aborts assembly with a *config.StageError.
func Assemble(ctx context.Context, cfg resolve.Config) ([]blueprint.Stage, error) {
	logger := ctxlog.FromContext(ctx)

	dev, err := deployDev(cfg)
	if err != nil {
		return nil, err
	}

	stages := []blueprint.Stage{source(cfg), build(cfg), dev}

	switch live := cfg.Live.(type) {
	case config.GatedLiveStage:
		s, err := deployLive(cfg, live.Spec)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	case config.NoLiveStage, nil:
		logger.Debug("No live stage configured.")
	}

	for _, s := range stages {
		logger.Debug("Assembled stage.", "stage", s.Name, "actions", len(s.Actions))
	}
	return stages, nil
}

func source(cfg resolve.Config) blueprint.Stage {
	return blueprint.Stage{
		Name: StageSource,
		Actions: []blueprint.Action{
			{
				Name:      ActionCode,
				Category:  blueprint.CategorySource,
				Provider:  ProviderGitHub,
				RunOrder:  1,
				Namespace: SourceNamespace,
				Outputs:   []blueprint.Artifact{blueprint.ArtifactSource},
				Source: &blueprint.SourceConfig{
					Owner:      cfg.Owner,
					Repo:       cfg.Repo,
					Branch:     cfg.Branch,
					OAuthToken: cfg.SourceSecret,
					Trigger:    blueprint.TriggerWebhook,
				},
			},
			{
				Name:     ActionTools,
				Category: blueprint.CategorySource,
				Provider: ProviderGitHub,
				RunOrder: 1,
				Outputs:  []blueprint.Artifact{blueprint.ArtifactTools},
				Source: &blueprint.SourceConfig{
					Owner:      cfg.ToolsOwner,
					Repo:       cfg.ToolsRepo,
					Branch:     cfg.ToolsBranch,
					OAuthToken: cfg.SourceSecret,
					Trigger:    blueprint.TriggerNone,
				},
			},
		},
	}
}

func build(cfg resolve.Config) blueprint.Stage {
	plain := func(name string, v deferred.Value) blueprint.EnvVar {
		return blueprint.EnvVar{Name: name, Type: blueprint.EnvPlaintext, Value: v}
	}

	return blueprint.Stage{
		Name: StageBuild,
		Actions: []blueprint.Action{{
			Name:     ActionBuild,
			Category: blueprint.CategoryBuild,
			Provider: ProviderCodeBuild,
			RunOrder: 1,
			Inputs:   []blueprint.Artifact{blueprint.ArtifactSource, blueprint.ArtifactTools},
			Outputs:  []blueprint.Artifact{blueprint.ArtifactBuildOutput},
			Build: &blueprint.BuildConfig{
				Project: cfg.Service,
				EnvironmentVariables: []blueprint.EnvVar{
					plain(EnvCommitID, deferred.Literal(CommitIDVariable)),
					plain(EnvCommitBranch, deferred.Literal(BranchNameVariable)),
					plain(EnvPackageTokenParam, cfg.PackageTokenParam),
					plain(EnvDeployTemplate, deferred.Literal(config.DefaultTemplate)),
					plain(EnvPackageBucket, cfg.ArtifactBucket),
				},
			},
		}},
	}
}

func deployDev(cfg resolve.Config) (blueprint.Stage, error) {
	path, err := templatePath(StageDeployDev, cfg.DevStage)
	if err != nil {
		return blueprint.Stage{}, err
	}

	return blueprint.Stage{
		Name: StageDeployDev,
		Actions: []blueprint.Action{{
			Name:     ActionDeployDevStack,
			Category: blueprint.CategoryDeploy,
			Provider: ProviderCloudFormation,
			RunOrder: 1,
			Inputs:   []blueprint.Artifact{blueprint.ArtifactBuildOutput},
			Deploy: &blueprint.DeployConfig{
				Mode:               blueprint.ModeCreateUpdate,
				StackName:          cfg.DevStage.StackName,
				TemplatePath:       path,
				AdminPermissions:   true,
				ReplaceOnFailure:   true,
				Capabilities:       append([]cftypes.Capability(nil), Capabilities...),
				ParameterOverrides: parameterOverrides(APIStageDev),
			},
		}},
	}, nil
}

func deployLive(cfg resolve.Config, spec config.DeployStageSpec) (blueprint.Stage, error) {
	path, err := templatePath(StageDeployLive, spec)
	if err != nil {
		return blueprint.Stage{}, err
	}

	return blueprint.Stage{
		Name: StageDeployLive,
		Actions: []blueprint.Action{
			{
				Name:     ActionPrepareChanges,
				Category: blueprint.CategoryDeploy,
				Provider: ProviderCloudFormation,
				RunOrder: 1,
				Inputs:   []blueprint.Artifact{blueprint.ArtifactBuildOutput},
				Deploy: &blueprint.DeployConfig{
					Mode:               blueprint.ModeChangeSetReplace,
					StackName:          spec.StackName,
					ChangeSetName:      ChangeSetName,
					TemplatePath:       path,
					AdminPermissions:   true,
					Capabilities:       append([]cftypes.Capability(nil), Capabilities...),
					ParameterOverrides: parameterOverrides(APIStageLive),
				},
			},
			{
				Name:     ActionApproveChanges,
				Category: blueprint.CategoryApproval,
				Provider: ProviderManual,
				RunOrder: 2,
				Approval: &blueprint.ApprovalConfig{
					NotifyEmails:          []deferred.Value{cfg.Email},
					AdditionalInformation: cfg.ApprovalMessage,
				},
			},
			{
				Name:     ActionExecuteChanges,
				Category: blueprint.CategoryDeploy,
				Provider: ProviderCloudFormation,
				RunOrder: 3,
				Deploy: &blueprint.DeployConfig{
					Mode:          blueprint.ModeChangeSetExecute,
					StackName:     spec.StackName,
					ChangeSetName: ChangeSetName,
				},
			},
		},
	}, nil
}

// templatePath locates the effective template inside the build output.
func templatePath(stage string, spec config.DeployStageSpec) (string, error) {
	tmpl := spec.EffectiveTemplate()
	if tmpl == "" {
		return "", &config.StageError{Stage: stage, Err: config.ErrEmptyTemplate}
	}
	return string(blueprint.ArtifactBuildOutput) + "::" + tmpl, nil
}

func parameterOverrides(apiStage string) map[string]deferred.Value {
	return map[string]deferred.Value{
		ParamAPIStage:   deferred.Literal(apiStage),
		ParamCommitInfo: CommitInfo(),
	}
}
