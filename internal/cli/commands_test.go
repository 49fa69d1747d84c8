package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI with a fresh command tree and returns
// captured stdout.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeData unmarshals the "data" field of a JSON CLI response.
func decodeData(t *testing.T, output string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestSaveAndGet(t *testing.T) {
	db := testDBPath(t)
	payloadPath := filepath.Join(t.TempDir(), "env.json")
	require.NoError(t, os.WriteFile(payloadPath, []byte(`{"image":"x:1"}`), 0o644))

	out, err := runCommand(t, "", "--db", db, "--format", "json", "save", payloadPath)
	require.NoError(t, err)

	var saved struct {
		EnvID   string `json:"env_id"`
		Created bool   `json:"created"`
	}
	decodeData(t, out, &saved)
	assert.Len(t, saved.EnvID, 8)
	assert.True(t, saved.Created)

	out, err = runCommand(t, "", "--db", db, "--format", "json", "get", saved.EnvID)
	require.NoError(t, err)

	var got struct {
		EnvID   string         `json:"env_id"`
		LongID  string         `json:"long_id"`
		Payload map[string]any `json:"payload"`
	}
	decodeData(t, out, &got)
	assert.Equal(t, saved.EnvID, got.EnvID)
	assert.True(t, strings.HasPrefix(got.LongID, got.EnvID))
	assert.Equal(t, "x:1", got.Payload["image"])
}

func TestSaveFromStdin(t *testing.T) {
	db := testDBPath(t)

	out, err := runCommand(t, `{"image":"x:1"}`, "--db", db, "--format", "json", "save", "-")
	require.NoError(t, err)

	var saved struct {
		EnvID string `json:"env_id"`
	}
	decodeData(t, out, &saved)
	assert.Len(t, saved.EnvID, 8)
}

func TestSaveDuplicateReportsExistingID(t *testing.T) {
	db := testDBPath(t)
	payloadPath := filepath.Join(t.TempDir(), "env.json")
	require.NoError(t, os.WriteFile(payloadPath, []byte(`{"image":"x:1"}`), 0o644))

	out, err := runCommand(t, "", "--db", db, "--format", "json", "save", payloadPath)
	require.NoError(t, err)
	var first struct {
		EnvID   string `json:"env_id"`
		Created bool   `json:"created"`
	}
	decodeData(t, out, &first)
	require.True(t, first.Created)

	out, err = runCommand(t, "", "--db", db, "--format", "json", "save", payloadPath)
	require.NoError(t, err)
	var second struct {
		EnvID   string `json:"env_id"`
		Created bool   `json:"created"`
	}
	decodeData(t, out, &second)
	assert.Equal(t, first.EnvID, second.EnvID)
	assert.False(t, second.Created)
}

func TestSaveYAMLMatchesJSON(t *testing.T) {
	db := testDBPath(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "env.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"image":"x:1","channels":["stable"]}`), 0o644))
	yamlPath := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("image: \"x:1\"\nchannels:\n  - stable\n"), 0o644))

	out, err := runCommand(t, "", "--db", db, "--format", "json", "save", jsonPath)
	require.NoError(t, err)
	var fromJSON struct {
		EnvID string `json:"env_id"`
	}
	decodeData(t, out, &fromJSON)

	out, err = runCommand(t, "", "--db", db, "--format", "json", "save", yamlPath)
	require.NoError(t, err)
	var fromYAML struct {
		EnvID   string `json:"env_id"`
		Created bool   `json:"created"`
	}
	decodeData(t, out, &fromYAML)

	assert.Equal(t, fromJSON.EnvID, fromYAML.EnvID, "same content must get the same id regardless of format")
	assert.False(t, fromYAML.Created)
}

func TestGetNotFound(t *testing.T) {
	db := testDBPath(t)

	_, err := runCommand(t, "", "--db", db, "get", "00000000")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestBindCurrentList(t *testing.T) {
	db := testDBPath(t)
	dir := t.TempDir()

	defA := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(defA, []byte(`{"image":"a:1"}`), 0o644))
	defB := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(defB, []byte(`{"image":"b:1"}`), 0o644))

	var savedA, savedB struct {
		EnvID string `json:"env_id"`
	}
	out, err := runCommand(t, "", "--db", db, "--format", "json", "save", defA)
	require.NoError(t, err)
	decodeData(t, out, &savedA)
	out, err = runCommand(t, "", "--db", db, "--format", "json", "save", defB)
	require.NoError(t, err)
	decodeData(t, out, &savedB)

	// Bind A, then redeploy to B
	_, err = runCommand(t, "", "--db", db, "bind", "checkout", "prod", savedA.EnvID)
	require.NoError(t, err)
	_, err = runCommand(t, "", "--db", db, "bind", "checkout", "prod", savedB.EnvID)
	require.NoError(t, err)
	_, err = runCommand(t, "", "--db", db, "bind", "search", "staging", savedA.EnvID)
	require.NoError(t, err)

	out, err = runCommand(t, "", "--db", db, "--format", "json", "current", "checkout", "prod")
	require.NoError(t, err)
	var current struct {
		App     string         `json:"app"`
		Env     string         `json:"env"`
		EnvID   string         `json:"env_id"`
		Payload map[string]any `json:"payload"`
	}
	decodeData(t, out, &current)
	assert.Equal(t, "checkout", current.App)
	assert.Equal(t, savedB.EnvID, current.EnvID, "latest bind wins")
	assert.Equal(t, "b:1", current.Payload["image"])

	out, err = runCommand(t, "", "--db", db, "--format", "json", "list")
	require.NoError(t, err)
	var list []map[string]string
	decodeData(t, out, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "checkout", list[0]["app"])
	assert.Equal(t, savedB.EnvID, list[0]["env_id"])
	assert.Equal(t, "search", list[1]["app"])
	assert.Equal(t, savedA.EnvID, list[1]["env_id"])
}

func TestBindUnknownDefinition(t *testing.T) {
	db := testDBPath(t)

	_, err := runCommand(t, "", "--db", db, "bind", "checkout", "prod", "00000000")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown definition")
}

func TestCurrentNeverBound(t *testing.T) {
	db := testDBPath(t)

	_, err := runCommand(t, "", "--db", db, "current", "ghost", "prod")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTextOutput(t *testing.T) {
	db := testDBPath(t)

	out, err := runCommand(t, `{"image":"x:1"}`, "--db", db, "save", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "saved ")
}
