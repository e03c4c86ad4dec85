package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `roots:
  - name: world
    position: [1, 0, 0]
    children:
      - name: ship
        type: Mesh
        position: [0, 2, 0]
        scale: [2, 2, 2]
        layers: [0, 3]
        meta:
          hull: 100
        children:
          - name: gun
            position: [1, 0, 0]
`

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "arbor", cmd.Use)
	assert.Contains(t, cmd.Long, "YAML")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"snapshot", "tree", "list", "show"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	stableFlag := cmd.PersistentFlags().Lookup("stable-ids")
	require.NotNil(t, stableFlag)
	assert.Equal(t, "false", stableFlag.DefValue)
}

func TestSnapshotCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	snapCmd, _, err := cmd.Find([]string{"snapshot"})
	require.NoError(t, err)

	indentFlag := snapCmd.Flags().Lookup("indent")
	require.NotNil(t, indentFlag)
	assert.Equal(t, "true", indentFlag.DefValue)

	assert.NotNil(t, snapCmd.Flags().Lookup("db"))
	assert.NotNil(t, snapCmd.Flags().Lookup("label"))
}

func TestStoreCommandsRequireDB(t *testing.T) {
	_, err := execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestTreeCommand(t *testing.T) {
	path := writeScene(t, testScene)

	out, err := execute(t, "tree", path)
	require.NoError(t, err)
	assert.Equal(t, "world (1, 0, 0)\n  ship (1, 2, 0)\n    gun (3, 2, 0)\n", out)
}

func TestTreeCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "tree", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scene file")
}
