package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// ErrEmptyTemplate is returned when a deploy stage has no template after
// defaulting.
var ErrEmptyTemplate = errors.New("deployment template path is empty")

// StageError attributes a configuration error to a pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ValidationError lists every structural problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n- %s", strings.Join(e.Problems, "\n- "))
}

// ValidationResult holds errors and warnings from config validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError when there are errors, nil otherwise.
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return &ValidationError{Problems: r.Errors}
}

var serviceNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Validate checks the configuration for missing or malformed fields.
// Template paths are not checked here; the stage assembler rejects them.
func (c *PipelineConfig) Validate() *ValidationResult {
	r := &ValidationResult{}
	required := func(name, value string) {
		if value == "" {
			r.Errors = append(r.Errors, name+" is required")
		}
	}

	if c.Service == "" {
		r.Errors = append(r.Errors, "service is required")
	} else if !serviceNamePattern.MatchString(c.Service) {
		r.Errors = append(r.Errors, fmt.Sprintf("service %q must match %s", c.Service, serviceNamePattern))
	}

	required("owner", c.Owner)
	required("repo", c.Repo)
	required("branch", c.Branch)
	required("tools_repo", c.ToolsRepo)
	required("tools_branch", c.ToolsBranch)
	required("artifact_bucket", c.ArtifactBucket)
	required("build_spec", c.BuildSpec)
	required("package_token_param", c.PackageTokenParam)
	if c.SourceSecret.IsZero() {
		r.Errors = append(r.Errors, "source_secret is required")
	}

	for i, p := range c.ParameterPaths {
		if !strings.HasPrefix(p, "/") {
			r.Errors = append(r.Errors, fmt.Sprintf("parameter_paths[%d]: %q must start with '/'", i, p))
		}
	}

	for _, f := range []struct{ name, value string }{
		{"owner", c.Owner},
		{"repo", c.Repo},
		{"branch", c.Branch},
		{"tools_owner", c.ToolsOwner},
		{"tools_repo", c.ToolsRepo},
		{"tools_branch", c.ToolsBranch},
		{"email", c.Email},
		{"artifact_bucket", c.ArtifactBucket},
		{"build_spec", c.BuildSpec},
		{"package_token_param", c.PackageTokenParam},
		{"approval_message", c.ApprovalMessage},
	} {
		r.warnReference(f.name, f.value)
	}

	required("dev_stage.stack_name", c.DevStage.StackName)
	r.warnNested("dev_stage", c.DevStage)

	switch live := c.Live.(type) {
	case nil, NoLiveStage:
	case GatedLiveStage:
		required("live_stage.stack_name", live.Spec.StackName)
		required("email", c.Email)
		r.warnNested("live_stage", live.Spec)
		if live.Spec.StackName != "" && live.Spec.StackName == c.DevStage.StackName {
			r.Warnings = append(r.Warnings, fmt.Sprintf("dev_stage and live_stage both target stack %q", live.Spec.StackName))
		}
	default:
		r.Errors = append(r.Errors, fmt.Sprintf("unsupported live stage variant %T", live))
	}

	return r
}

// warnNested flags nested values that look like indirect references. Only
// top-level fields are resolved, so these would reach the platform verbatim.
func (r *ValidationResult) warnNested(stage string, s DeployStageSpec) {
	if _, ok := deferred.Split(s.StackName); ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s.stack_name %q is not resolved; nested fields are used verbatim", stage, s.StackName))
	}
	if s.Template != nil {
		if _, ok := deferred.Split(*s.Template); ok {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s.template %q is not resolved; nested fields are used verbatim", stage, *s.Template))
		}
	}
}

// warnReference flags indirect references whose parameter path is empty or
// relative. They are still deferred as written.
func (r *ValidationResult) warnReference(name, value string) {
	path, ok := deferred.Split(value)
	switch {
	case !ok:
	case path == "":
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s %q refers to an empty parameter path", name, value))
	case !strings.HasPrefix(path, "/"):
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s %q refers to a parameter path without a leading '/'", name, value))
	}
}
