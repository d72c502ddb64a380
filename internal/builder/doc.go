/*
Package builder is the top-level entry point of blueprint construction. It
turns a PipelineConfig and the ambient deployment environment into a finished
*blueprint.Blueprint.

Construction is a single synchronous pass:

 1. Validation: the environment must name an account and a region, and the
    configuration must pass config.Validate. Warnings are logged and do not
    stop construction.

 2. Resolution: top-level indirect references are replaced by deferred
    handles obtained from the parameter-store collaborator. By default each
    build uses a fresh deferred.ParameterStore, whose declared parameters are
    attached to the blueprint.

 3. Policy: the build role statements are derived from the resolved parameter
    paths and artifact bucket.

 4. Assembly: the stage list is assembled. Any configuration error aborts the
    build and no partial blueprint is returned.
*/
package builder
