package deferred

import (
	"encoding/json"
	"strings"
)

// Prefix marks a configuration string whose real value lives in the
// parameter store and is only looked up at deploy time.
const Prefix = "ssm:"

// Ref builds an indirect reference for the given parameter path.
func Ref(path string) string {
	return Prefix + path
}

// Split reports whether s is an indirect reference and, if so, returns the
// parameter path behind the prefix. The path is not validated.
func Split(s string) (string, bool) {
	if !strings.HasPrefix(s, Prefix) {
		return "", false
	}
	return strings.TrimPrefix(s, Prefix), true
}

// Handle is a value that only becomes known when the orchestration platform
// evaluates the blueprint.
type Handle interface {
	// Path is the parameter-store path the handle stands for.
	Path() string
	// Token is the structure written into the blueprint in place of the value.
	Token() any
}

// ResolveFunc turns a parameter-store path into a deferred handle.
type ResolveFunc func(path string) Handle

type kind int

const (
	kindLiteral kind = iota
	kindHandle
	kindJoin
)

// Value is a blueprint value: a literal string, a deferred handle, or a
// concatenation of both.
type Value struct {
	kind    kind
	literal string
	handle  Handle
	parts   []Value
}

// Literal wraps a string known at build time.
func Literal(s string) Value {
	return Value{kind: kindLiteral, literal: s}
}

// FromHandle wraps a deferred handle.
func FromHandle(h Handle) Value {
	if h == nil {
		return Literal("")
	}
	return Value{kind: kindHandle, handle: h}
}

// Join concatenates values. Adjacent literals are merged, and a join made
// only of literals collapses into a single literal.
func Join(parts ...Value) Value {
	var out []Value
	for _, p := range parts {
		var flat []Value
		if p.kind == kindJoin {
			flat = p.parts
		} else {
			flat = []Value{p}
		}
		for _, f := range flat {
			if f.kind == kindLiteral && f.literal == "" {
				continue
			}
			if n := len(out); n > 0 && f.kind == kindLiteral && out[n-1].kind == kindLiteral {
				out[n-1] = Literal(out[n-1].literal + f.literal)
				continue
			}
			out = append(out, f)
		}
	}

	switch len(out) {
	case 0:
		return Literal("")
	case 1:
		return out[0]
	}
	return Value{kind: kindJoin, parts: out}
}

// IsDeferred reports whether any part of the value is unknown until deploy time.
func (v Value) IsDeferred() bool {
	switch v.kind {
	case kindHandle:
		return true
	case kindJoin:
		for _, p := range v.parts {
			if p.IsDeferred() {
				return true
			}
		}
	}
	return false
}

// IsEmpty reports whether the value is the empty literal.
func (v Value) IsEmpty() bool {
	return v.kind == kindLiteral && v.literal == ""
}

// LiteralString returns the literal content and true when the value is fully
// known at build time.
func (v Value) LiteralString() (string, bool) {
	if v.kind != kindLiteral {
		return "", false
	}
	return v.literal, true
}

// Handle returns the deferred handle, or nil for literals and joins.
func (v Value) Handle() Handle {
	return v.handle
}

// String renders the value for humans and logs. Deferred parts are shown as
// ${ssm:<path>}.
func (v Value) String() string {
	switch v.kind {
	case kindHandle:
		return "${" + Ref(v.handle.Path()) + "}"
	case kindJoin:
		var sb strings.Builder
		for _, p := range v.parts {
			sb.WriteString(p.String())
		}
		return sb.String()
	}
	return v.literal
}

// Render returns the structure the orchestration platform receives.
func (v Value) Render() any {
	switch v.kind {
	case kindHandle:
		return v.handle.Token()
	case kindJoin:
		rendered := make([]any, 0, len(v.parts))
		for _, p := range v.parts {
			rendered = append(rendered, p.Render())
		}
		return map[string]any{"Fn::Join": []any{"", rendered}}
	}
	return v.literal
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Render())
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Render(), nil
}
