package hclconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mitchellh/mapstructure"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/ctxlog"
	"github.com/specialistvlad/pipeprint/internal/fsutil"
	"github.com/specialistvlad/pipeprint/internal/policy"
	"gopkg.in/yaml.v3"
)

// ErrNoPipeline is returned when none of the loaded files defines a pipeline.
var ErrNoPipeline = errors.New("no pipeline definition found")

// Document is the result of loading configuration files.
type Document struct {
	Pipeline *config.PipelineConfig
	// Environment is nil when no file has an environment section.
	Environment *policy.Environment
	// Files lists the files that were read, in load order.
	Files []string
}

// Loader reads pipeline configuration from HCL, YAML and JSON files.
type Loader struct{}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every supported file in paths. Directories are walked
// recursively; paths that do not exist are skipped. Exactly one pipeline and
// at most one environment may be defined across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuration loader started.", "path_count", len(paths))

	files, err := findConfigFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered configuration files.", "count", len(files))

	var (
		parser        = hclparse.NewParser()
		pipelineBlock *hcl.Block
		envBlock      *hcl.Block
		pipelineInput map[string]any
		pipelineFile  string
		envInput      map[string]any
		envFile       string
	)

	for _, file := range files {
		switch filepath.Ext(file) {
		case ".hcl":
			hclFile, diags := parser.ParseHCLFile(file)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
			}
			content, diags := hclFile.Body.Content(rootSchema)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
			}

			pb, diags := findUniqueBlock(content.Blocks, "pipeline", pipelineBlock)
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid configuration in %s: %w", file, diags)
			}
			eb, diags := findUniqueBlock(content.Blocks, "environment", envBlock)
			if diags.HasErrors() {
				return nil, fmt.Errorf("invalid configuration in %s: %w", file, diags)
			}
			if pb != pipelineBlock && pipelineInput != nil {
				return nil, fmt.Errorf("pipeline in %s is already defined in %s", file, pipelineFile)
			}
			if eb != envBlock && envInput != nil {
				return nil, fmt.Errorf("environment in %s is already defined in %s", file, envFile)
			}
			if pb != pipelineBlock {
				pipelineFile = file
			}
			if eb != envBlock {
				envFile = file
			}
			pipelineBlock, envBlock = pb, eb

		case ".yaml", ".yml", ".json":
			doc, err := readMapping(file)
			if err != nil {
				return nil, err
			}
			if raw, ok := doc["environment"]; ok {
				delete(doc, "environment")
				if envBlock != nil || envInput != nil {
					return nil, fmt.Errorf("environment in %s is already defined in %s", file, envFile)
				}
				m, ok := raw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("environment in %s must be a mapping", file)
				}
				envInput, envFile = m, file
			}
			if len(doc) > 0 {
				if pipelineBlock != nil || pipelineInput != nil {
					return nil, fmt.Errorf("pipeline in %s is already defined in %s", file, pipelineFile)
				}
				pipelineInput, pipelineFile = doc, file
			}
		}
	}

	service := ""
	if pipelineBlock != nil {
		service = pipelineBlock.Labels[0]
		input, diags := decodePipeline(pipelineBlock)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode pipeline in %s: %w", pipelineFile, diags)
		}
		pipelineInput = input
	}
	if pipelineInput == nil {
		return nil, fmt.Errorf("%w in %v", ErrNoPipeline, paths)
	}

	cfg, err := config.Decode(pipelineInput)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pipelineFile, err)
	}
	doc := &Document{Pipeline: cfg, Files: files}

	switch {
	case envBlock != nil:
		env, diags := decodeEnvironment(envBlock, service)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode environment in %s: %w", envFile, diags)
		}
		doc.Environment = env
	case envInput != nil:
		env, err := mapEnvironment(envInput)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envFile, err)
		}
		doc.Environment = env
	}

	logger.Debug("Configuration loading complete.", "service", cfg.Service, "pipeline_file", pipelineFile, "has_environment", doc.Environment != nil)
	return doc, nil
}

// decodePipeline evaluates a pipeline block into the mapping form understood
// by config.Decode. Only attributes present in the block are included.
func decodePipeline(block *hcl.Block) (map[string]any, hcl.Diagnostics) {
	service := block.Labels[0]

	var pb pipelineBlock
	diags := gohcl.DecodeBody(block.Body, evalContext(service), &pb)
	if diags.HasErrors() {
		return nil, diags
	}

	m := map[string]any{"service": service}
	str := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}

	if pb.UseDefaults != nil {
		m["useDefaults"] = *pb.UseDefaults
	}
	str("owner", pb.Owner)
	str("repo", pb.Repo)
	str("branch", pb.Branch)
	str("toolsOwner", pb.ToolsOwner)
	str("toolsRepo", pb.ToolsRepo)
	str("toolsBranch", pb.ToolsBranch)
	str("sourceSecret", pb.SourceSecret)
	str("email", pb.Email)
	str("artifactBucket", pb.ArtifactBucket)
	str("buildSpec", pb.BuildSpec)
	str("packageTokenParam", pb.PackageTokenParam)
	str("approvalMessage", pb.ApprovalMessage)
	if pb.ParameterPaths != nil {
		m["parameterPaths"] = append([]string{}, *pb.ParameterPaths...)
	}
	if pb.Build != nil {
		str("buildImage", pb.Build.Image)
		str("buildComputeType", pb.Build.ComputeType)
	}
	if pb.DevStage != nil {
		if pb.DevStage.Enabled != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported argument",
				Detail:   "The dev_stage block is always present; \"enabled\" is only valid in live_stage.",
				Subject:  block.DefRange.Ptr(),
			})
			return nil, diags
		}
		m["devStage"] = stageMapping(pb.DevStage)
	}
	if pb.LiveStage != nil {
		m["liveStage"] = stageMapping(pb.LiveStage)
	}
	return m, diags
}

func stageMapping(s *stageBlock) map[string]any {
	m := map[string]any{}
	if s.StackName != nil {
		m["stackName"] = *s.StackName
	}
	if s.Template != nil {
		m["template"] = *s.Template
	}
	if s.Enabled != nil {
		m["enabled"] = *s.Enabled
	}
	return m
}

func decodeEnvironment(block *hcl.Block, service string) (*policy.Environment, hcl.Diagnostics) {
	var eb environmentBlock
	diags := gohcl.DecodeBody(block.Body, evalContext(service), &eb)
	if diags.HasErrors() {
		return nil, diags
	}

	env := &policy.Environment{}
	if eb.Account != nil {
		env.Account = *eb.Account
	}
	if eb.Region != nil {
		env.Region = *eb.Region
	}
	if eb.Partition != nil {
		env.Partition = *eb.Partition
	}
	return env, diags
}

func mapEnvironment(input map[string]any) (*policy.Environment, error) {
	env := &policy.Environment{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      env,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create environment decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return env, nil
}

// readMapping decodes a YAML or JSON file into a generic mapping.
func readMapping(file string) (map[string]any, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

var supportedExts = []string{".hcl", ".yaml", ".yml", ".json"}

// PipelineFileSuffixes mark YAML and JSON files as pipeline definitions when
// a directory is walked. Other YAML and JSON files in a project directory,
// such as buildspec.yml or package.json, are not read.
var PipelineFileSuffixes = []string{".pipeline.yaml", ".pipeline.yml", ".pipeline.json"}

// findConfigFiles walks all given paths and returns a flat list of the
// supported files found. Missing paths are skipped. Files named explicitly
// are read whatever their supported extension; inside directories only .hcl
// files and files with a pipeline suffix are picked up.
func findConfigFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		files, err := fsutil.FindFiles(path, supportedExts...)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if info.IsDir() && !isDirectoryCandidate(f) {
				continue
			}
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}

func isDirectoryCandidate(file string) bool {
	if filepath.Ext(file) == ".hcl" {
		return true
	}
	for _, suffix := range PipelineFileSuffixes {
		if strings.HasSuffix(file, suffix) {
			return true
		}
	}
	return false
}
