package deferred

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSplit(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		wantPath string
		wantOK   bool
	}{
		{name: "indirect reference", in: "ssm:/cicd/common/github/owner", wantPath: "/cicd/common/github/owner", wantOK: true},
		{name: "prefix only", in: "ssm:", wantPath: "", wantOK: true},
		{name: "literal", in: "orders-dev", wantOK: false},
		{name: "prefix in the middle", in: "x-ssm:/a", wantOK: false},
		{name: "upper case prefix is a literal", in: "SSM:/a", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path, ok := Split(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantPath, path)
		})
	}
}

func TestJoin_CollapsesLiterals(t *testing.T) {
	v := Join(Literal("arn:aws:s3:::"), Literal("bucket"), Literal("/*"))

	s, ok := v.LiteralString()
	require.True(t, ok)
	assert.Equal(t, "arn:aws:s3:::bucket/*", s)
	assert.False(t, v.IsDeferred())
}

func TestJoin_KeepsHandles(t *testing.T) {
	store := NewParameterStore()
	bucket := FromHandle(store.Resolve("/cicd/common/lambdaBucket"))

	v := Join(Literal("arn:aws:s3:::"), bucket, Literal("/"), Literal("*"))

	require.True(t, v.IsDeferred())
	_, ok := v.LiteralString()
	assert.False(t, ok)
	assert.Equal(t, "arn:aws:s3:::${ssm:/cicd/common/lambdaBucket}/*", v.String())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Join":["",["arn:aws:s3:::",{"Ref":"SsmCicdCommonLambdaBucket"},"/*"]]}`, string(raw))
}

func TestJoin_NestedJoinsFlatten(t *testing.T) {
	store := NewParameterStore()
	h := FromHandle(store.Resolve("/a"))

	inner := Join(Literal("x"), h)
	outer := Join(inner, Literal("y"), Join(Literal("z")))

	raw, err := json.Marshal(outer)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Join":["",["x",{"Ref":"SsmA"},"yz"]]}`, string(raw))
}

func TestValue_MarshalYAML(t *testing.T) {
	store := NewParameterStore()
	doc := map[string]Value{
		"literal":  Literal("orders-dev"),
		"deferred": FromHandle(store.Resolve("/cicd/orders/github/repo")),
	}

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "literal: orders-dev")
	assert.Contains(t, string(out), "Ref: SsmCicdOrdersGithubRepo")
}

func TestFromHandle_NilIsEmpty(t *testing.T) {
	assert.True(t, FromHandle(nil).IsEmpty())
}

func TestSecret_Renders(t *testing.T) {
	s := SecretsManager("codebuild/github/token")

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"{{resolve:secretsmanager:codebuild/github/token:SecretString:::}}"`, string(raw))
	assert.Equal(t, "secretsmanager:codebuild/github/token", s.String())
	assert.False(t, s.IsZero())
	assert.True(t, Secret{}.IsZero())
}
