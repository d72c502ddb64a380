package deferred

import (
	"strconv"
	"strings"
	"unicode"
)

// SSMParameterType is the template parameter type the platform resolves
// against the parameter store when the blueprint is deployed.
const SSMParameterType = "AWS::SSM::Parameter::Value<String>"

// Parameter is a template parameter declared for a deferred value.
type Parameter struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Default string `json:"default" yaml:"default"`
}

type parameterHandle struct {
	path string
	name string
}

func (h *parameterHandle) Path() string { return h.path }

func (h *parameterHandle) Token() any {
	return map[string]any{"Ref": h.name}
}

// ParameterStore is the default resolve collaborator. It does not contact the
// parameter store; it declares one template parameter per distinct path and
// returns handles referencing them. A ParameterStore belongs to a single
// blueprint build and is not safe for concurrent use.
type ParameterStore struct {
	byPath map[string]*parameterHandle
	names  map[string]struct{}
	params []Parameter
}

// NewParameterStore creates an empty ParameterStore.
func NewParameterStore() *ParameterStore {
	return &ParameterStore{
		byPath: make(map[string]*parameterHandle),
		names:  make(map[string]struct{}),
	}
}

// Resolve returns the handle for path, declaring a parameter on first use.
func (s *ParameterStore) Resolve(path string) Handle {
	if h, ok := s.byPath[path]; ok {
		return h
	}

	name := parameterName(path)
	for i := 2; ; i++ {
		if _, taken := s.names[name]; !taken {
			break
		}
		name = parameterName(path) + strconv.Itoa(i)
	}

	h := &parameterHandle{path: path, name: name}
	s.byPath[path] = h
	s.names[name] = struct{}{}
	s.params = append(s.params, Parameter{Name: name, Type: SSMParameterType, Default: path})
	return h
}

// Parameters returns the declared parameters in first-use order.
func (s *ParameterStore) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// parameterName derives a template-safe identifier from a parameter path,
// e.g. /cicd/common/github/owner -> SsmCicdCommonGithubOwner.
func parameterName(path string) string {
	var sb strings.Builder
	sb.WriteString("Ssm")
	upper := true
	for _, r := range path {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) || r > unicode.MaxASCII {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
