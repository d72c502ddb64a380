package config

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// Conventional parameter-store layout used by Defaults.
const (
	commonNamespace    = "common"
	sourceSecretID     = "codebuild/github/token"
	packageTokenPath   = "/cicd/common/github/npmtoken"
	ownerPath          = "/cicd/common/github/owner"
	emailPath          = "/cicd/common/notification/email"
	artifactBucketPath = "/cicd/common/lambdaBucket"
)

// ParameterNamespace returns the parameter-store pattern covering a namespace.
func ParameterNamespace(name string) string {
	return fmt.Sprintf("/cicd/%s/*", name)
}

// Defaults returns a fully populated baseline configuration for a service.
// Values conventionally kept in the parameter store are returned as
// indirect references; nothing is resolved here.
func Defaults(service, branch string) PipelineConfig {
	return PipelineConfig{
		Service:           service,
		Owner:             deferred.Ref(ownerPath),
		Repo:              deferred.Ref(fmt.Sprintf("/cicd/%s/github/repo", service)),
		Branch:            branch,
		ToolsRepo:         DefaultToolsRepo,
		ToolsBranch:       branch,
		SourceSecret:      deferred.SecretsManager(sourceSecretID),
		Email:             deferred.Ref(emailPath),
		ArtifactBucket:    deferred.Ref(artifactBucketPath),
		BuildSpec:         DefaultBuildSpec,
		PackageTokenParam: packageTokenPath,
		ParameterPaths: []string{
			ParameterNamespace(service),
			ParameterNamespace(commonNamespace),
		},
		ApprovalMessage: DefaultApprovalMessage,
		Build: BuildEnvironment{
			Image:       DefaultBuildImage,
			ComputeType: DefaultComputeType,
		},
		DevStage: DeployStageSpec{StackName: service + "-dev"},
		Live:     GatedLiveStage{Spec: DeployStageSpec{StackName: service + "-live"}},
	}
}

// ApplyDefaults fills empty fields that have a fixed default and the fields
// derived from others.
func ApplyDefaults(cfg *PipelineConfig) error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("failed to apply configuration defaults: %w", err)
	}
	return nil
}
