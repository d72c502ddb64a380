/*
Package hclconfig loads pipeline configuration files.

The native format is HCL:

	pipeline "orders" {
	  use_defaults = true
	  branch       = "main"
	  repo         = ssm("/cicd/${service}/github/repo")

	  dev_stage {
	    stack_name = "${service}-dev"
	  }

	  live_stage {
	    enabled = false
	  }
	}

	environment {
	  account = env("AWS_ACCOUNT_ID")
	  region  = "eu-west-1"
	}

Expressions may use the variable `service` (the pipeline label) and the
functions ssm, env, lower, upper, format and join. Attributes that are not
set keep the value from the baseline: Defaults(service, branch) when
use_defaults is true, the empty configuration otherwise.

YAML and JSON files carry the same keys in camelCase, with an optional
top-level `environment` mapping. When a directory is loaded, only YAML and
JSON files named *.pipeline.yaml, *.pipeline.yml or *.pipeline.json are read;
any supported file can be named explicitly.
*/
package hclconfig
