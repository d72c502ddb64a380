// Package blueprint holds the pipeline structure handed to the orchestration
// platform, together with its serialized forms.
package blueprint

import (
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/specialistvlad/pipeprint/internal/policy"
)

// Artifact names a bundle of files passed between actions.
type Artifact string

// Artifacts produced by the pipeline.
const (
	ArtifactSource      Artifact = "src"
	ArtifactTools       Artifact = "tools"
	ArtifactBuildOutput Artifact = "buildOutput"
)

// Category is the kind of work an action performs.
type Category string

const (
	CategorySource   Category = "Source"
	CategoryBuild    Category = "Build"
	CategoryDeploy   Category = "Deploy"
	CategoryApproval Category = "Approval"
)

// SourceTrigger selects how a source action reacts to repository changes.
type SourceTrigger string

const (
	TriggerWebhook SourceTrigger = "WebHook"
	TriggerNone    SourceTrigger = "None"
)

// DeployMode is the stack operation a deploy action performs.
type DeployMode string

const (
	ModeCreateUpdate     DeployMode = "CREATE_UPDATE"
	ModeChangeSetReplace DeployMode = "CHANGE_SET_REPLACE"
	ModeChangeSetExecute DeployMode = "CHANGE_SET_EXECUTE"
)

// EnvVarType tells the build how to interpret an environment variable value.
type EnvVarType string

const (
	EnvPlaintext      EnvVarType = "PLAINTEXT"
	EnvParameterStore EnvVarType = "PARAMETER_STORE"
)

// Blueprint is the complete pipeline description.
type Blueprint struct {
	Name                     string               `json:"name" yaml:"name"`
	RestartExecutionOnUpdate bool                 `json:"restartExecutionOnUpdate" yaml:"restartExecutionOnUpdate"`
	Parameters               []deferred.Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	BuildProject             BuildProject         `json:"buildProject" yaml:"buildProject"`
	Stages                   []Stage              `json:"stages" yaml:"stages"`
}

// BuildProject is the build container definition and its execution role.
type BuildProject struct {
	Name             deferred.Value     `json:"name" yaml:"name"`
	Description      string             `json:"description" yaml:"description"`
	Image            string             `json:"image" yaml:"image"`
	ComputeType      string             `json:"computeType" yaml:"computeType"`
	BuildSpec        deferred.Value     `json:"buildSpec" yaml:"buildSpec"`
	PolicyStatements []policy.Statement `json:"policyStatements" yaml:"policyStatements"`
}

// Stage is an ordered group of actions.
type Stage struct {
	Name    string   `json:"name" yaml:"name"`
	Actions []Action `json:"actions" yaml:"actions"`
}

// Action is a unit of work inside a stage. Exactly one of the configuration
// blocks matching Category is set.
type Action struct {
	Name      string     `json:"name" yaml:"name"`
	Category  Category   `json:"category" yaml:"category"`
	Provider  string     `json:"provider" yaml:"provider"`
	RunOrder  int        `json:"runOrder" yaml:"runOrder"`
	Namespace string     `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Inputs    []Artifact `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs   []Artifact `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	Source   *SourceConfig   `json:"source,omitempty" yaml:"source,omitempty"`
	Build    *BuildConfig    `json:"build,omitempty" yaml:"build,omitempty"`
	Deploy   *DeployConfig   `json:"deploy,omitempty" yaml:"deploy,omitempty"`
	Approval *ApprovalConfig `json:"approval,omitempty" yaml:"approval,omitempty"`
}

// SourceConfig checks out a repository branch.
type SourceConfig struct {
	Owner      deferred.Value  `json:"owner" yaml:"owner"`
	Repo       deferred.Value  `json:"repo" yaml:"repo"`
	Branch     deferred.Value  `json:"branch" yaml:"branch"`
	OAuthToken deferred.Secret `json:"oauthToken" yaml:"oauthToken"`
	Trigger    SourceTrigger   `json:"trigger" yaml:"trigger"`
}

// EnvVar is an environment variable exposed to the build.
type EnvVar struct {
	Name  string         `json:"name" yaml:"name"`
	Type  EnvVarType     `json:"type" yaml:"type"`
	Value deferred.Value `json:"value" yaml:"value"`
}

// BuildConfig runs the build project. The first input is the primary source.
type BuildConfig struct {
	Project              deferred.Value `json:"project" yaml:"project"`
	EnvironmentVariables []EnvVar       `json:"environmentVariables" yaml:"environmentVariables"`
}

// DeployConfig applies a template to a stack.
type DeployConfig struct {
	Mode               DeployMode                `json:"mode" yaml:"mode"`
	StackName          string                    `json:"stackName" yaml:"stackName"`
	ChangeSetName      string                    `json:"changeSetName,omitempty" yaml:"changeSetName,omitempty"`
	TemplatePath       string                    `json:"templatePath,omitempty" yaml:"templatePath,omitempty"`
	AdminPermissions   bool                      `json:"adminPermissions" yaml:"adminPermissions"`
	ReplaceOnFailure   bool                      `json:"replaceOnFailure" yaml:"replaceOnFailure"`
	Capabilities       []cftypes.Capability      `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	ParameterOverrides map[string]deferred.Value `json:"parameterOverrides,omitempty" yaml:"parameterOverrides,omitempty"`
}

// ApprovalConfig blocks the stage until someone approves or rejects.
type ApprovalConfig struct {
	NotifyEmails          []deferred.Value `json:"notifyEmails" yaml:"notifyEmails"`
	AdditionalInformation deferred.Value   `json:"additionalInformation" yaml:"additionalInformation"`
}

// Stage returns the stage with the given name.
func (b *Blueprint) Stage(name string) (Stage, bool) {
	for _, s := range b.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Action returns the action with the given name.
func (s Stage) Action(name string) (Action, bool) {
	for _, a := range s.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// EnvVar returns the build environment variable with the given name.
func (c *BuildConfig) EnvVar(name string) (EnvVar, bool) {
	for _, v := range c.EnvironmentVariables {
		if v.Name == name {
			return v, true
		}
	}
	return EnvVar{}, false
}
