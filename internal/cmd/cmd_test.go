package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/testutil"
)

const testCatalog = `
width: 4
height: 4
layers:
  - id: 1
    name: body
    elements: [a.png, b.png]
    dimensions: [0, 0, 4, 4]
required:
  - id: 2
    name: eyes
    elements: [x.png]
    dimensions: [0, 0, 4, 4]
`

// workspace holds a catalog, its assets and an empty build dir.
type workspace struct {
	dir      string
	catalog  string
	assets   string
	buildDir string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COMBOGEN_CONFIG", "")

	dir := t.TempDir()
	ws := &workspace{
		dir:      dir,
		catalog:  testutil.WriteFile(t, dir, "catalog.yaml", testCatalog),
		assets:   filepath.Join(dir, "Assets"),
		buildDir: filepath.Join(dir, "Builds"),
	}
	testutil.Assets(t, ws.assets, map[string][]string{
		"body": {"a.png", "b.png"},
		"eyes": {"x.png"},
	})
	return ws
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// newProbeCmd returns a command that resolves settings and hands them to fn.
func newProbeCmd(f *passFlags, fn func(*settings)) *cobra.Command {
	cmd := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, f, "")
			if err != nil {
				return err
			}
			fn(s)
			return nil
		},
	}
	f.bindStorage(cmd)
	f.bindRender(cmd)
	return cmd
}
