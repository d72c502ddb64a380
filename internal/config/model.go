package config

import (
	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// Fixed identifiers shared by the builder and the build tooling.
const (
	// DefaultBuildSpec is the buildspec file looked up in the main source.
	DefaultBuildSpec = "buildspec.yml"
	// DefaultTemplate is the deployment template the build stage writes into
	// its output artifact.
	DefaultTemplate = "cfn-deploy.yml"
	// DefaultToolsRepo is the repository holding the shared build helpers.
	DefaultToolsRepo = "maketools"
	// DefaultApprovalMessage accompanies the approval notification.
	DefaultApprovalMessage = "Review the prepared change set before it is applied to the live stack."
	// DefaultBuildImage is the build container image.
	DefaultBuildImage = "aws/codebuild/standard:4.0"
	// DefaultComputeType is the build container size.
	DefaultComputeType = "BUILD_GENERAL1_SMALL"
	// DisplayNameSuffix is appended to the service name to form the pipeline name.
	DisplayNameSuffix = "Master"
)

// DeployStageSpec describes a stack deployment target.
type DeployStageSpec struct {
	StackName string
	// Template is the template file inside the build output. A nil Template
	// selects DefaultTemplate; a non-nil empty string is kept as is and
	// rejected when the stage is assembled.
	Template *string
}

// EffectiveTemplate returns the template name after defaulting.
func (s DeployStageSpec) EffectiveTemplate() string {
	if s.Template == nil {
		return DefaultTemplate
	}
	return *s.Template
}

// LiveStage is the optional gated deployment. It is either NoLiveStage or
// GatedLiveStage.
type LiveStage interface {
	liveStage()
}

// NoLiveStage omits the gated deployment stage.
type NoLiveStage struct{}

// GatedLiveStage deploys to Spec after a manual approval.
type GatedLiveStage struct {
	Spec DeployStageSpec
}

func (NoLiveStage) liveStage()    {}
func (GatedLiveStage) liveStage() {}

// BuildEnvironment selects the build container. The default tags must match
// DefaultBuildImage and DefaultComputeType.
type BuildEnvironment struct {
	Image       string `default:"aws/codebuild/standard:4.0"`
	ComputeType string `default:"BUILD_GENERAL1_SMALL"`
}

// PipelineConfig is the complete input of the blueprint builder.
type PipelineConfig struct {
	// Service names the pipeline and the build project.
	Service string

	// Main repository coordinates.
	Owner  string
	Repo   string
	Branch string

	// Tools repository coordinates. An empty ToolsOwner means Owner.
	ToolsOwner  string
	ToolsRepo   string `default:"maketools"` // DefaultToolsRepo
	ToolsBranch string

	// SourceSecret authenticates both source actions.
	SourceSecret deferred.Secret

	// Email receives the live-stage approval requests.
	Email string

	// ArtifactBucket receives packaged build output.
	ArtifactBucket string

	BuildSpec string `default:"buildspec.yml"` // DefaultBuildSpec

	// PackageTokenParam is handed to the build as a plaintext parameter path;
	// the build itself reads the secure string.
	PackageTokenParam string

	// ParameterPaths lists the parameter-store patterns the build may read.
	ParameterPaths []string

	// ApprovalMessage defaults to DefaultApprovalMessage.
	ApprovalMessage string `default:"Review the prepared change set before it is applied to the live stack."`

	Build BuildEnvironment

	DevStage DeployStageSpec
	Live     LiveStage
}

// SetDefaults implements defaults.Setter. It fills the fields whose default
// depends on other fields.
func (c *PipelineConfig) SetDefaults() {
	if c.ToolsBranch == "" {
		c.ToolsBranch = c.Branch
	}
	if c.Live == nil {
		c.Live = NoLiveStage{}
	}
}

// DisplayName returns the pipeline name derived from the service.
func (c *PipelineConfig) DisplayName() string {
	return c.Service + DisplayNameSuffix
}

// EffectiveToolsOwner returns the owner of the tools repository.
func (c *PipelineConfig) EffectiveToolsOwner() string {
	if c.ToolsOwner == "" {
		return c.Owner
	}
	return c.ToolsOwner
}

// StringPtr returns a pointer to s. It is convenient for DeployStageSpec.Template.
func StringPtr(s string) *string {
	return &s
}
