package stage

// Stage names in pipeline order.
const (
	StageSource     = "Source"
	StageBuild      = "Build"
	StageDeployDev  = "DeployDev"
	StageDeployLive = "DeployLive"
)

// Action names.
const (
	ActionCode           = "Code"
	ActionTools          = "Tools"
	ActionBuild          = "Build"
	ActionDeployDevStack = "DeployDevStack"
	ActionPrepareChanges = "PrepareChanges"
	ActionApproveChanges = "ApproveChanges"
	ActionExecuteChanges = "ExecuteChanges"
)

// Action providers.
const (
	ProviderGitHub         = "GitHub"
	ProviderCodeBuild      = "CodeBuild"
	ProviderCloudFormation = "CloudFormation"
	ProviderManual         = "Manual"
)

// SourceNamespace is the variable namespace of the main source action.
const SourceNamespace = "SourceVariables"

// Variables exported by the main source action.
const (
	CommitIDVariable   = "#{" + SourceNamespace + ".CommitId}"
	BranchNameVariable = "#{" + SourceNamespace + ".BranchName}"
)

// Environment variables every build receives.
const (
	EnvCommitID          = "COMMIT_ID"
	EnvCommitBranch      = "COMMIT_BRANCH"
	EnvPackageTokenParam = "NPM_TOKEN_PARAM_KEY"
	EnvDeployTemplate    = "SAM_DEPLOY_TEMPLATE"
	EnvPackageBucket     = "PACKAGE_OUTPUT_BUCKET"
)

// Deployment parameter names and stage labels.
const (
	ParamAPIStage   = "ApiStage"
	ParamCommitInfo = "CommitInfo"

	APIStageDev  = "dev"
	APIStageLive = "live"
)

// ChangeSetName is reused by every run of the pipeline.
const ChangeSetName = "DeployLiveChangeSet"
