package hclconfig

import (
	"github.com/hashicorp/hcl/v2"
)

// rootSchema lists the top-level blocks of a configuration file.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "pipeline", LabelNames: []string{"service"}},
		{Type: "environment"},
	},
}

// pipelineBlock is the body of a `pipeline "<service>"` block. Pointer fields
// distinguish an absent attribute from an empty one.
type pipelineBlock struct {
	UseDefaults       *bool       `hcl:"use_defaults,optional"`
	Owner             *string     `hcl:"owner,optional"`
	Repo              *string     `hcl:"repo,optional"`
	Branch            *string     `hcl:"branch,optional"`
	ToolsOwner        *string     `hcl:"tools_owner,optional"`
	ToolsRepo         *string     `hcl:"tools_repo,optional"`
	ToolsBranch       *string     `hcl:"tools_branch,optional"`
	SourceSecret      *string     `hcl:"source_secret,optional"`
	Email             *string     `hcl:"email,optional"`
	ArtifactBucket    *string     `hcl:"artifact_bucket,optional"`
	BuildSpec         *string     `hcl:"build_spec,optional"`
	PackageTokenParam *string     `hcl:"package_token_param,optional"`
	ParameterPaths    *[]string   `hcl:"parameter_paths,optional"`
	ApprovalMessage   *string     `hcl:"approval_message,optional"`
	Build             *buildBlock `hcl:"build,block"`
	DevStage          *stageBlock `hcl:"dev_stage,block"`
	LiveStage         *stageBlock `hcl:"live_stage,block"`
}

type buildBlock struct {
	Image       *string `hcl:"image,optional"`
	ComputeType *string `hcl:"compute_type,optional"`
}

type stageBlock struct {
	StackName *string `hcl:"stack_name,optional"`
	Template  *string `hcl:"template,optional"`
	Enabled   *bool   `hcl:"enabled,optional"`
}

type environmentBlock struct {
	Account   *string `hcl:"account,optional"`
	Region    *string `hcl:"region,optional"`
	Partition *string `hcl:"partition,optional"`
}

// findUniqueBlock returns the single block of the given type. Every further
// block of that type is reported as a duplicate.
func findUniqueBlock(blocks hcl.Blocks, typeName string, seen *hcl.Block) (*hcl.Block, hcl.Diagnostics) {
	found := seen
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != typeName {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + typeName + "\" block",
				Detail:   "Only one \"" + typeName + "\" block is allowed, first defined at " + found.DefRange.String() + ".",
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		found = block
	}
	return found, diags
}
