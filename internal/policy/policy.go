// Package policy derives the access statements the build stage needs.
package policy

import (
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// EffectAllow is the only effect this package emits.
const EffectAllow = "Allow"

// Verbs granted by each statement.
var (
	ParameterReadActions = []string{
		"ssm:GetParameter",
		"ssm:GetParameters",
		"ssm:DescribeParameters",
		"ssm:GetParameterHistory",
	}
	ArtifactStoreActions = []string{
		"s3:PutObject",
		"s3:GetObject",
		"s3:CreateMultipartUpload",
	}
)

// Statement is a single access grant attached to the build role.
type Statement struct {
	Effect    string           `json:"effect" yaml:"effect"`
	Actions   []string         `json:"actions" yaml:"actions"`
	Resources []deferred.Value `json:"resources" yaml:"resources"`
}

// Build returns the parameter-read statement, when paths is not empty,
// followed by the artifact-store statement for bucket.
func Build(paths []string, bucket deferred.Value, env Environment) []Statement {
	statements := make([]Statement, 0, 2)
	if len(paths) > 0 {
		resources := make([]deferred.Value, 0, len(paths))
		for _, p := range paths {
			resources = append(resources, deferred.Literal(ParameterARN(env, p)))
		}
		statements = append(statements, Statement{
			Effect:    EffectAllow,
			Actions:   append([]string(nil), ParameterReadActions...),
			Resources: resources,
		})
	}

	statements = append(statements, Statement{
		Effect:  EffectAllow,
		Actions: append([]string(nil), ArtifactStoreActions...),
		Resources: []deferred.Value{
			BucketARN(env, bucket),
			deferred.Join(BucketARN(env, bucket), deferred.Literal("/*")),
		},
	})
	return statements
}

// ParameterARN qualifies a parameter path pattern such as /cicd/orders/* with
// the account and region of env.
func ParameterARN(env Environment, path string) string {
	return arn.ARN{
		Partition: env.EffectivePartition(),
		Service:   "ssm",
		Region:    env.Region,
		AccountID: env.Account,
		Resource:  "parameter" + path,
	}.String()
}

// BucketARN returns the identifier of bucket. Bucket identifiers carry no
// account or region. A deferred bucket name yields a joined value.
func BucketARN(env Environment, bucket deferred.Value) deferred.Value {
	prefix := arn.ARN{
		Partition: env.EffectivePartition(),
		Service:   "s3",
	}.String()
	return deferred.Join(deferred.Literal(prefix), bucket)
}
