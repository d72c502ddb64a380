// Package config defines the typed pipeline configuration consumed by the
// blueprint builder, together with the baseline defaults, the decoder for
// mapping-shaped input and the structural validation that runs before any
// stage is assembled.
//
// String fields on PipelineConfig may carry an indirect reference
// ("ssm:<path>") instead of a literal. Only the top-level string fields are
// candidates for resolution; fields of the nested stage descriptors are
// always used verbatim.
package config
