package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// stageDocument is the mapping form of a deploy stage.
type stageDocument struct {
	StackName string  `mapstructure:"stackName"`
	Template  *string `mapstructure:"template"`
	// Enabled only applies to the live stage; false removes it.
	Enabled *bool `mapstructure:"enabled"`
}

// document is the mapping form of PipelineConfig, shared by JSON and YAML
// inputs and the HTTP API.
type document struct {
	Service           string         `mapstructure:"service"`
	UseDefaults       bool           `mapstructure:"useDefaults"`
	Owner             string         `mapstructure:"owner"`
	Repo              string         `mapstructure:"repo"`
	Branch            string         `mapstructure:"branch"`
	ToolsOwner        string         `mapstructure:"toolsOwner"`
	ToolsRepo         string         `mapstructure:"toolsRepo"`
	ToolsBranch       string         `mapstructure:"toolsBranch"`
	SourceSecret      string         `mapstructure:"sourceSecret"`
	Email             string         `mapstructure:"email"`
	ArtifactBucket    string         `mapstructure:"artifactBucket"`
	BuildSpec         string         `mapstructure:"buildSpec"`
	PackageTokenParam string         `mapstructure:"packageTokenParam"`
	ParameterPaths    []string       `mapstructure:"parameterPaths"`
	ApprovalMessage   string         `mapstructure:"approvalMessage"`
	BuildImage        string         `mapstructure:"buildImage"`
	BuildComputeType  string         `mapstructure:"buildComputeType"`
	DevStage          *stageDocument `mapstructure:"devStage"`
	LiveStage         *stageDocument `mapstructure:"liveStage"`
}

// Decode builds a PipelineConfig from mapping-shaped input such as decoded
// JSON or YAML. When the input sets useDefaults, the keys present in the
// input are laid over Defaults(service, branch); otherwise they are laid
// over an empty configuration. Fixed defaults are applied in both cases.
// Unknown keys are rejected.
func Decode(input map[string]any) (*PipelineConfig, error) {
	var probe struct {
		Service     string `mapstructure:"service"`
		Branch      string `mapstructure:"branch"`
		UseDefaults bool   `mapstructure:"useDefaults"`
	}
	if err := mapstructure.WeakDecode(input, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline configuration: %w", err)
	}

	var base PipelineConfig
	if probe.UseDefaults {
		base = Defaults(probe.Service, probe.Branch)
	}

	cfg, err := Overlay(base, input)
	if err != nil {
		return nil, err
	}
	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay returns a copy of base with the keys present in input applied on
// top. Keys absent from input keep the value from base.
func Overlay(base PipelineConfig, input map[string]any) (*PipelineConfig, error) {
	doc := toDocument(base)
	if _, ok := input["parameterPaths"]; ok {
		// Lists replace, they never merge element-wise.
		doc.ParameterPaths = nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create configuration decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline configuration: %w", err)
	}
	cfg := fromDocument(doc)
	return &cfg, nil
}

func toDocument(c PipelineConfig) document {
	doc := document{
		Service:           c.Service,
		Owner:             c.Owner,
		Repo:              c.Repo,
		Branch:            c.Branch,
		ToolsOwner:        c.ToolsOwner,
		ToolsRepo:         c.ToolsRepo,
		ToolsBranch:       c.ToolsBranch,
		SourceSecret:      c.SourceSecret.ID,
		Email:             c.Email,
		ArtifactBucket:    c.ArtifactBucket,
		BuildSpec:         c.BuildSpec,
		PackageTokenParam: c.PackageTokenParam,
		ParameterPaths:    append([]string(nil), c.ParameterPaths...),
		ApprovalMessage:   c.ApprovalMessage,
		BuildImage:        c.Build.Image,
		BuildComputeType:  c.Build.ComputeType,
	}
	if c.DevStage != (DeployStageSpec{}) {
		doc.DevStage = &stageDocument{StackName: c.DevStage.StackName, Template: clone(c.DevStage.Template)}
	}
	if live, ok := c.Live.(GatedLiveStage); ok {
		doc.LiveStage = &stageDocument{StackName: live.Spec.StackName, Template: clone(live.Spec.Template)}
	}
	return doc
}

func fromDocument(doc document) PipelineConfig {
	c := PipelineConfig{
		Service:           doc.Service,
		Owner:             doc.Owner,
		Repo:              doc.Repo,
		Branch:            doc.Branch,
		ToolsOwner:        doc.ToolsOwner,
		ToolsRepo:         doc.ToolsRepo,
		ToolsBranch:       doc.ToolsBranch,
		Email:             doc.Email,
		ArtifactBucket:    doc.ArtifactBucket,
		BuildSpec:         doc.BuildSpec,
		PackageTokenParam: doc.PackageTokenParam,
		ParameterPaths:    doc.ParameterPaths,
		ApprovalMessage:   doc.ApprovalMessage,
		Build: BuildEnvironment{
			Image:       doc.BuildImage,
			ComputeType: doc.BuildComputeType,
		},
		Live: NoLiveStage{},
	}
	if doc.SourceSecret != "" {
		c.SourceSecret = deferred.SecretsManager(doc.SourceSecret)
	}
	if doc.DevStage != nil {
		c.DevStage = DeployStageSpec{StackName: doc.DevStage.StackName, Template: doc.DevStage.Template}
	}
	if ls := doc.LiveStage; ls != nil && (ls.Enabled == nil || *ls.Enabled) {
		c.Live = GatedLiveStage{Spec: DeployStageSpec{StackName: ls.StackName, Template: ls.Template}}
	}
	return c
}

// clone copies p so the decoder never writes through a pointer owned by the
// base configuration.
func clone(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
