package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const (
	tradeRules  = "../../testdata/rules/trade.yaml"
	brokenRules = "../../testdata/rules/broken.yaml"
)

func absPath(t *testing.T, rel string) string {
	t.Helper()
	p, err := filepath.Abs(rel)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// writeConfig writes a configuration pointing at the shared test model and
// catalogue, followed by extra YAML, and selects it with --config.
func writeConfig(t *testing.T, extra string) {
	t.Helper()
	content := fmt.Sprintf(`model:
  path: %s
operators:
  catalogues:
    - %s
rules:
  paths:
    - %s
telemetry:
  logging:
    level: error
`, absPath(t, "../../testdata/model.yaml"), absPath(t, "../../testdata/operators.yaml"), absPath(t, "../../testdata/rules"))

	path := filepath.Join(t.TempDir(), "saturn.yaml")
	if err := os.WriteFile(path, []byte(content+extra), 0o644); err != nil {
		t.Fatal(err)
	}

	oldCfg, oldLevel, oldFormat := cfgFile, logLevel, logFormat
	cfgFile, logLevel, logFormat = path, "", ""
	t.Cleanup(func() { cfgFile, logLevel, logFormat = oldCfg, oldLevel, oldFormat })
}

// newTestCommand returns a command with captured output streams.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	return cmd, &out
}
