package hclconfig_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/specialistvlad/pipeprint/internal/hclconfig"
	"github.com/specialistvlad/pipeprint/internal/policy"
	"github.com/specialistvlad/pipeprint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineBlock(t *testing.T) {
	testutil.RunPipelineParsingTests(t, []testutil.PipelineTestCase{
		{
			Name: "defaults with dev stage",
			HCL: `
				use_defaults = true
				branch       = "main"

				dev_stage {
				  stack_name = "${service}-dev"
				}
			`,
			Validate: func(t *testing.T, doc *hclconfig.Document) {
				want := config.Defaults("orders", "main")
				if diff := cmp.Diff(want, *doc.Pipeline); diff != "" {
					t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
				}
				assert.Nil(t, doc.Environment)
			},
		},
		{
			Name: "explicit values without defaults",
			HCL: `
				owner           = "acme"
				repo            = ssm("/cicd/${service}/github/repo")
				branch          = "release"
				tools_owner     = "platform"
				source_secret   = "gh/token"
				artifact_bucket = lower("ACME-Artifacts")
				parameter_paths = ["/cicd/${service}/*"]

				build {
				  compute_type = "BUILD_GENERAL1_MEDIUM"
				}

				dev_stage {
				  stack_name = "orders-dev"
				  template   = "dev.yml"
				}
			`,
			Validate: func(t *testing.T, doc *hclconfig.Document) {
				cfg := doc.Pipeline
				assert.Equal(t, "acme", cfg.Owner)
				assert.Equal(t, "ssm:/cicd/orders/github/repo", cfg.Repo)
				assert.Equal(t, "release", cfg.ToolsBranch)
				assert.Equal(t, "platform", cfg.EffectiveToolsOwner())
				assert.Equal(t, deferred.SecretsManager("gh/token"), cfg.SourceSecret)
				assert.Equal(t, "acme-artifacts", cfg.ArtifactBucket)
				assert.Equal(t, []string{"/cicd/orders/*"}, cfg.ParameterPaths)
				assert.Equal(t, "BUILD_GENERAL1_MEDIUM", cfg.Build.ComputeType)
				assert.Equal(t, "aws/codebuild/standard:4.0", cfg.Build.Image)
				assert.Equal(t, "dev.yml", cfg.DevStage.EffectiveTemplate())
				assert.Equal(t, config.NoLiveStage{}, cfg.Live)
			},
		},
		{
			Name: "live stage disabled over defaults",
			HCL: `
				use_defaults = true
				branch       = "main"

				live_stage {
				  enabled = false
				}
			`,
			Validate: func(t *testing.T, doc *hclconfig.Document) {
				assert.Equal(t, config.NoLiveStage{}, doc.Pipeline.Live)
				assert.Equal(t, "orders-dev", doc.Pipeline.DevStage.StackName)
			},
		},
		{
			Name: "empty parameter paths replace defaults",
			HCL: `
				use_defaults    = true
				branch          = "main"
				parameter_paths = []
			`,
			Validate: func(t *testing.T, doc *hclconfig.Document) {
				assert.Empty(t, doc.Pipeline.ParameterPaths)
			},
		},
		{
			Name: "environment block with env function",
			HCL: `
				use_defaults = true
				branch       = "main"
			`,
			Extra: `
				environment {
				  account = env("PIPEPRINT_TEST_ACCOUNT")
				  region  = "eu-west-1"
				}
			`,
			Env: map[string]string{"PIPEPRINT_TEST_ACCOUNT": "123456789012"},
			Validate: func(t *testing.T, doc *hclconfig.Document) {
				require.NotNil(t, doc.Environment)
				assert.Equal(t, policy.Environment{Account: "123456789012", Region: "eu-west-1"}, *doc.Environment)
			},
		},
		{
			Name:        "enabled is rejected on dev stage",
			HCL:         "dev_stage {\n  enabled = false\n}\n",
			ExpectErr:   true,
			ErrContains: "only valid in live_stage",
		},
		{
			Name:        "unknown attribute",
			HCL:         `stack_name_dev = "orders-dev"`,
			ExpectErr:   true,
			ErrContains: "stack_name_dev",
		},
		{
			Name: "ssm path without leading slash is kept",
			HCL:  `owner = ssm("cicd/owner")`,
			Validate: func(t *testing.T, doc *hclconfig.Document) {
				assert.Equal(t, "ssm:cicd/owner", doc.Pipeline.Owner)
			},
		},
		{
			Name:        "duplicate environment",
			HCL:         `branch = "main"`,
			Extra:       "environment {}\nenvironment {}\n",
			ExpectErr:   true,
			ErrContains: `Duplicate "environment" block`,
		},
	})
}

func TestLoad_DuplicatePipelineAcrossFiles(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl": `pipeline "orders" {}`,
		"b.hcl": `pipeline "billing" {}`,
	})

	_, err := hclconfig.NewLoader().Load(context.Background(), dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `Duplicate "pipeline" block`)
}

func TestLoad_Directory(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"pipeline/main.hcl": `
			pipeline "orders" {
			  use_defaults = true
			  branch       = "main"
			}
		`,
		"pipeline/env.hcl": `
			environment {
			  account = "123456789012"
			  region  = "cn-north-1"
			}
		`,
		"pipeline/README.md": "ignored",
	})

	doc, err := hclconfig.NewLoader().Load(context.Background(), filepath.Join(dir, "pipeline"), filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Len(t, doc.Files, 2)
	assert.Equal(t, "ordersMaster", doc.Pipeline.DisplayName())
	require.NotNil(t, doc.Environment)
	assert.Equal(t, "aws-cn", doc.Environment.EffectivePartition())
}

func TestLoad_YAML(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"pipeline.yaml": `
			service: orders
			branch: main
			useDefaults: true
			liveStage:
			  template: live.yml
			environment:
			  account: "123456789012"
			  region: eu-west-1
		`,
	})

	doc, err := hclconfig.NewLoader().Load(context.Background(), filepath.Join(dir, "pipeline.yaml"))
	require.NoError(t, err)

	live, ok := doc.Pipeline.Live.(config.GatedLiveStage)
	require.True(t, ok)
	assert.Equal(t, "live.yml", live.Spec.EffectiveTemplate())
	assert.Equal(t, "orders-live", live.Spec.StackName)
	require.NotNil(t, doc.Environment)
	assert.Equal(t, "eu-west-1", doc.Environment.Region)
}

func TestLoad_JSON(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"orders.pipeline.json": `{"service": "orders", "branch": "main", "useDefaults": true, "parameterPaths": ["/only/*"]}`,
	})

	doc, err := hclconfig.NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"/only/*"}, doc.Pipeline.ParameterPaths)
}

func TestLoad_DirectorySkipsProjectFiles(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"pipeline.hcl": `
			pipeline "orders" {
			  use_defaults = true
			  branch       = "main"
			}
		`,
		"buildspec.yml": `
			version: 0.2
			phases:
			  build:
			    commands:
			      - make package
		`,
		"package.json":             `{"name": "orders", "version": "1.0.0"}`,
		"deploy/env.pipeline.yaml": "environment:\n  account: \"123456789012\"\n  region: eu-west-1\n",
	})

	doc, err := hclconfig.NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "deploy", "env.pipeline.yaml"),
		filepath.Join(dir, "pipeline.hcl"),
	}, doc.Files)
	assert.Equal(t, "orders", doc.Pipeline.Service)
	require.NotNil(t, doc.Environment)
	assert.Equal(t, "eu-west-1", doc.Environment.Region)
}

func TestLoad_ExplicitFileIgnoresSuffix(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"ci.yml":        "service: orders\nbranch: main\nuseDefaults: true\n",
		"buildspec.yml": "version: 0.2\n",
	})

	doc, err := hclconfig.NewLoader().Load(context.Background(), filepath.Join(dir, "ci.yml"))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "ci.yml")}, doc.Files)
	assert.Equal(t, "ordersMaster", doc.Pipeline.DisplayName())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name:        "no pipeline",
			files:       map[string]string{"env.hcl": `environment {}`},
			errContains: "no pipeline definition found",
		},
		{
			name: "pipeline in hcl and yaml",
			files: map[string]string{
				"a.hcl":  `pipeline "orders" {}`,
				"b.pipeline.yaml": "service: orders\n",
			},
			errContains: "already defined",
		},
		{
			name:        "unknown yaml key",
			files:       map[string]string{"p.pipeline.yml": "service: orders\nstackNameDev: x\n"},
			errContains: "stackNameDev",
		},
		{
			name:        "malformed hcl",
			files:       map[string]string{"p.hcl": `pipeline "orders" {`},
			errContains: "failed to parse HCL file",
		},
		{
			name:        "unknown environment key",
			files:       map[string]string{"p.pipeline.yaml": "service: orders\nenvironment:\n  zone: a\n"},
			errContains: "zone",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, tc.files)

			doc, err := hclconfig.NewLoader().Load(context.Background(), dir)

			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}
