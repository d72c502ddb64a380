package policy

import (
	"errors"
	"strings"
)

// Environment is the ambient deployment context used to qualify resource
// identifiers.
type Environment struct {
	Account   string `json:"account" yaml:"account"`
	Region    string `json:"region" yaml:"region"`
	Partition string `json:"partition,omitempty" yaml:"partition,omitempty"`
}

var (
	ErrMissingAccount = errors.New("deployment account is required")
	ErrMissingRegion  = errors.New("deployment region is required")
)

// Validate reports a missing account or region.
func (e Environment) Validate() error {
	var errs []error
	if e.Account == "" {
		errs = append(errs, ErrMissingAccount)
	}
	if e.Region == "" {
		errs = append(errs, ErrMissingRegion)
	}
	return errors.Join(errs...)
}

// EffectivePartition returns Partition when set, otherwise the partition the
// region belongs to.
func (e Environment) EffectivePartition() string {
	if e.Partition != "" {
		return e.Partition
	}
	return PartitionForRegion(e.Region)
}

// PartitionForRegion maps a region name to its partition.
func PartitionForRegion(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return "aws-cn"
	case strings.HasPrefix(region, "us-gov-"):
		return "aws-us-gov"
	default:
		return "aws"
	}
}
