package hclconfig

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/deferred"
	"github.com/specialistvlad/pipeprint/internal/policy"
	"github.com/zclconf/go-cty/cty"
)

// WriteConfig writes cfg as a `pipeline` block that Load reads back into an
// equal configuration. Indirect references are written as ssm() calls. env
// is written as an `environment` block when not nil.
func WriteConfig(w io.Writer, cfg config.PipelineConfig, env *policy.Environment) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	block := root.AppendNewBlock("pipeline", []string{cfg.Service})
	body := block.Body()

	setString(body, "owner", cfg.Owner)
	setString(body, "repo", cfg.Repo)
	setString(body, "branch", cfg.Branch)
	setString(body, "tools_owner", cfg.ToolsOwner)
	setString(body, "tools_repo", cfg.ToolsRepo)
	setString(body, "tools_branch", cfg.ToolsBranch)
	if !cfg.SourceSecret.IsZero() {
		body.SetAttributeValue("source_secret", cty.StringVal(cfg.SourceSecret.ID))
	}
	setString(body, "email", cfg.Email)
	setString(body, "artifact_bucket", cfg.ArtifactBucket)
	setString(body, "build_spec", cfg.BuildSpec)
	setString(body, "package_token_param", cfg.PackageTokenParam)
	if cfg.ParameterPaths != nil {
		paths := make([]cty.Value, 0, len(cfg.ParameterPaths))
		for _, p := range cfg.ParameterPaths {
			paths = append(paths, cty.StringVal(p))
		}
		if len(paths) == 0 {
			body.SetAttributeValue("parameter_paths", cty.ListValEmpty(cty.String))
		} else {
			body.SetAttributeValue("parameter_paths", cty.ListVal(paths))
		}
	}
	setString(body, "approval_message", cfg.ApprovalMessage)

	if cfg.Build != (config.BuildEnvironment{}) {
		body.AppendNewline()
		b := body.AppendNewBlock("build", nil).Body()
		setString(b, "image", cfg.Build.Image)
		setString(b, "compute_type", cfg.Build.ComputeType)
	}

	body.AppendNewline()
	writeStage(body.AppendNewBlock("dev_stage", nil).Body(), cfg.DevStage)

	body.AppendNewline()
	live := body.AppendNewBlock("live_stage", nil).Body()
	switch l := cfg.Live.(type) {
	case config.GatedLiveStage:
		writeStage(live, l.Spec)
	case config.NoLiveStage, nil:
		live.SetAttributeValue("enabled", cty.False)
	}

	if env != nil {
		root.AppendNewline()
		e := root.AppendNewBlock("environment", nil).Body()
		setString(e, "account", env.Account)
		setString(e, "region", env.Region)
		setString(e, "partition", env.Partition)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

func writeStage(body *hclwrite.Body, spec config.DeployStageSpec) {
	setString(body, "stack_name", spec.StackName)
	if spec.Template != nil {
		body.SetAttributeValue("template", cty.StringVal(*spec.Template))
	}
}

// setString writes a non-empty attribute, turning indirect references into
// ssm() calls.
func setString(body *hclwrite.Body, name, value string) {
	if value == "" {
		return
	}
	if path, ok := deferred.Split(value); ok && strings.HasPrefix(path, "/") {
		body.SetAttributeRaw(name, hclwrite.TokensForFunctionCall("ssm", hclwrite.TokensForValue(cty.StringVal(path))))
		return
	}
	body.SetAttributeValue(name, cty.StringVal(value))
}
