package stage

import (
	"context"
	"testing"

	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/specialistvlad/pipeprint/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, mutate func(c *config.PipelineConfig)) resolve.Config {
	t.Helper()
	cfg := config.Defaults("orders", "main")
	if mutate != nil {
		mutate(&cfg)
	}
	return resolve.Resolve(context.Background(), cfg, deferred.NewParameterStore().Resolve)
}

func stageNames(stages []blueprint.Stage) []string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.Name)
	}
	return names
}

func TestAssemble_Topology(t *testing.T) {
	testCases := []struct {
		name   string
		live   config.LiveStage
		stages []string
	}{
		{
			name:   "no live stage",
			live:   config.NoLiveStage{},
			stages: []string{StageSource, StageBuild, StageDeployDev},
		},
		{
			name:   "nil live stage",
			live:   nil,
			stages: []string{StageSource, StageBuild, StageDeployDev},
		},
		{
			name:   "gated live stage",
			live:   config.GatedLiveStage{Spec: config.DeployStageSpec{StackName: "orders-live"}},
			stages: []string{StageSource, StageBuild, StageDeployDev, StageDeployLive},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := resolved(t, func(c *config.PipelineConfig) { c.Live = tc.live })
			cfg.Live = tc.live

			stages, err := Assemble(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.stages, stageNames(stages))
			for _, s := range stages {
				assert.NotEmpty(t, s.Actions, "stage %s", s.Name)
			}
		})
	}
}

func TestAssemble_SourceStage(t *testing.T) {
	stages, err := Assemble(context.Background(), resolved(t, func(c *config.PipelineConfig) {
		c.ToolsOwner = "platform"
	}))
	require.NoError(t, err)

	src := stages[0]
	require.Len(t, src.Actions, 2)

	code, tools := src.Actions[0], src.Actions[1]
	assert.Equal(t, ActionCode, code.Name)
	assert.Equal(t, blueprint.TriggerWebhook, code.Source.Trigger)
	assert.Equal(t, SourceNamespace, code.Namespace)
	assert.Equal(t, []blueprint.Artifact{blueprint.ArtifactSource}, code.Outputs)

	assert.Equal(t, ActionTools, tools.Name)
	assert.Equal(t, blueprint.TriggerNone, tools.Source.Trigger)
	assert.Equal(t, []blueprint.Artifact{blueprint.ArtifactTools}, tools.Outputs)
	owner, _ := tools.Source.Owner.LiteralString()
	assert.Equal(t, "platform", owner)
	repo, _ := tools.Source.Repo.LiteralString()
	assert.Equal(t, "maketools", repo)

	assert.Equal(t, code.RunOrder, tools.RunOrder, "source actions carry no ordering between them")
	assert.Equal(t, code.Source.OAuthToken, tools.Source.OAuthToken)
	assert.NotEqual(t, code.Outputs, tools.Outputs)
}

func TestAssemble_BuildStage(t *testing.T) {
	stages, err := Assemble(context.Background(), resolved(t, nil))
	require.NoError(t, err)

	build := stages[1]
	require.Len(t, build.Actions, 1)
	action := build.Actions[0]
	assert.Equal(t, []blueprint.Artifact{blueprint.ArtifactSource, blueprint.ArtifactTools}, action.Inputs)
	assert.Equal(t, []blueprint.Artifact{blueprint.ArtifactBuildOutput}, action.Outputs)

	want := map[string]string{
		EnvCommitID:          CommitIDVariable,
		EnvCommitBranch:      BranchNameVariable,
		EnvPackageTokenParam: "/cicd/common/github/npmtoken",
		EnvDeployTemplate:    config.DefaultTemplate,
	}
	for name, value := range want {
		v, ok := action.Build.EnvVar(name)
		require.True(t, ok, name)
		assert.Equal(t, blueprint.EnvPlaintext, v.Type)
		s, ok := v.Value.LiteralString()
		require.True(t, ok, name)
		assert.Equal(t, value, s)
	}

	bucket, ok := action.Build.EnvVar(EnvPackageBucket)
	require.True(t, ok)
	assert.True(t, bucket.Value.IsDeferred())
	assert.Equal(t, "/cicd/common/lambdaBucket", bucket.Value.Handle().Path())
}

func TestAssemble_DeployDevStage(t *testing.T) {
	stages, err := Assemble(context.Background(), resolved(t, nil))
	require.NoError(t, err)

	dev := stages[2]
	require.Len(t, dev.Actions, 1)
	d := dev.Actions[0].Deploy
	require.NotNil(t, d)
	assert.Equal(t, blueprint.ModeCreateUpdate, d.Mode)
	assert.Equal(t, "orders-dev", d.StackName)
	assert.Equal(t, "buildOutput::cfn-deploy.yml", d.TemplatePath)
	assert.True(t, d.AdminPermissions)
	assert.True(t, d.ReplaceOnFailure)
	assert.Equal(t, Capabilities, d.Capabilities)

	apiStage, _ := d.ParameterOverrides[ParamAPIStage].LiteralString()
	assert.Equal(t, "dev", apiStage)
	commitInfo, _ := d.ParameterOverrides[ParamCommitInfo].LiteralString()
	assert.Equal(t, "#{SourceVariables.BranchName}_#{SourceVariables.CommitId}", commitInfo)
}

func TestAssemble_DeployLiveStage(t *testing.T) {
	stages, err := Assemble(context.Background(), resolved(t, func(c *config.PipelineConfig) {
		c.Live = config.GatedLiveStage{Spec: config.DeployStageSpec{StackName: "orders-live", Template: config.StringPtr("live.yml")}}
	}))
	require.NoError(t, err)
	require.Len(t, stages, 4)

	live := stages[3]
	require.Len(t, live.Actions, 3)
	for i, a := range live.Actions {
		assert.Equal(t, i+1, a.RunOrder, a.Name)
	}

	prepare, approve, execute := live.Actions[0], live.Actions[1], live.Actions[2]
	assert.Equal(t, ActionPrepareChanges, prepare.Name)
	assert.Equal(t, blueprint.ModeChangeSetReplace, prepare.Deploy.Mode)
	assert.Equal(t, "orders-live", prepare.Deploy.StackName)
	assert.Equal(t, "buildOutput::live.yml", prepare.Deploy.TemplatePath)
	assert.Equal(t, Capabilities, prepare.Deploy.Capabilities)
	apiStage, _ := prepare.Deploy.ParameterOverrides[ParamAPIStage].LiteralString()
	assert.Equal(t, "live", apiStage)

	assert.Equal(t, blueprint.CategoryApproval, approve.Category)
	require.Len(t, approve.Approval.NotifyEmails, 1)
	assert.Equal(t, "/cicd/common/notification/email", approve.Approval.NotifyEmails[0].Handle().Path())

	assert.Equal(t, ActionExecuteChanges, execute.Name)
	assert.Equal(t, blueprint.ModeChangeSetExecute, execute.Deploy.Mode)
	assert.Equal(t, prepare.Deploy.ChangeSetName, execute.Deploy.ChangeSetName)
	assert.Equal(t, ChangeSetName, execute.Deploy.ChangeSetName)
}

func TestAssemble_EmptyTemplate(t *testing.T) {
	testCases := []struct {
		name  string
		mut   func(c *config.PipelineConfig)
		stage string
	}{
		{
			name:  "dev",
			mut:   func(c *config.PipelineConfig) { c.DevStage.Template = config.StringPtr("") },
			stage: StageDeployDev,
		},
		{
			name: "live",
			mut: func(c *config.PipelineConfig) {
				c.Live = config.GatedLiveStage{Spec: config.DeployStageSpec{StackName: "orders-live", Template: config.StringPtr("")}}
			},
			stage: StageDeployLive,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stages, err := Assemble(context.Background(), resolved(t, tc.mut))

			require.Error(t, err)
			assert.Nil(t, stages)
			assert.ErrorIs(t, err, config.ErrEmptyTemplate)
			var stageErr *config.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tc.stage, stageErr.Stage)
		})
	}
}

func TestCommitInfo(t *testing.T) {
	s, ok := CommitInfo().LiteralString()
	require.True(t, ok)
	assert.Equal(t, BranchNameVariable+"_"+CommitIDVariable, s)
}
