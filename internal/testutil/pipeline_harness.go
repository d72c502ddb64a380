package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pipeprint/internal/hclconfig"
	"github.com/stretchr/testify/require"
)

// PipelineTestCase defines a single scenario for loading a `pipeline` block.
type PipelineTestCase struct {
	Name string
	// HCL is the content inside `pipeline "orders" { ... }`. It may be written
	// as an indented multi-line string.
	HCL string
	// Extra holds further top-level HCL, such as an environment block.
	Extra string
	// Env sets process environment variables for the duration of the case.
	Env         map[string]string
	ExpectErr   bool
	ErrContains string
	// Validate runs only when loading succeeded.
	Validate func(t *testing.T, doc *hclconfig.Document)
}

// LoadHCL writes src to a temporary main.hcl and loads it.
func LoadHCL(t *testing.T, src string) (*hclconfig.Document, error) {
	t.Helper()
	dir := WriteFiles(t, map[string]string{"main.hcl": src})
	return hclconfig.NewLoader().Load(context.Background(), filepath.Join(dir, "main.hcl"))
}

// RunPipelineParsingTests runs a table of pipeline block cases through the
// HCL loader.
func RunPipelineParsingTests(t *testing.T, cases []PipelineTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			for k, v := range tc.Env {
				t.Setenv(k, v)
			}
			src := fmt.Sprintf("pipeline \"orders\" {\n%s}\n%s", Unindent(tc.HCL), Unindent(tc.Extra))

			doc, err := LoadHCL(t, src)

			if tc.ExpectErr {
				require.Error(t, err, "Expected a loading error, but got none")
				if tc.ErrContains != "" {
					require.Contains(t, err.Error(), tc.ErrContains)
				}
				return
			}
			require.NoError(t, err, "Expected successful loading, but got an error")
			require.NotNil(t, doc.Pipeline)
			if tc.Validate != nil {
				tc.Validate(t, doc)
			}
		})
	}
}
