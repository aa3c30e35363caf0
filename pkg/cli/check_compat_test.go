package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	avroRecordV1 = `{"type":"record","name":"User","fields":[
		{"name":"id","type":"string"},
		{"name":"nickname","type":"string","default":"anon"}]}`
	avroRecordV2 = `{"type":"record","name":"User","fields":[
		{"name":"id","type":"string"}]}`
	avroRecordV3 = `{"type":"record","name":"User","fields":[
		{"name":"id","type":"string"},
		{"name":"email","type":"string"}]}`
)

func writeContract(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckCompatCompatible(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeContract(t, dir, "old.avsc", avroRecordV1)
	newPath := writeContract(t, dir, "new.avsc", avroRecordV2)

	var out bytes.Buffer
	err := checkCompat(oldPath, newPath, "", "BACKWARD", "text", &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Compatibility Level: BACKWARD")
}

func TestCheckCompatIncompatible(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeContract(t, dir, "old.avsc", avroRecordV1)
	newPath := writeContract(t, dir, "new.avsc", avroRecordV3)

	var out bytes.Buffer
	err := checkCompat(oldPath, newPath, "", "BACKWARD", "text", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.Contains(t, out.String(), "ADDED_REQUIRED_FIELD")
}

func TestCheckCompatJSONOutput(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeContract(t, dir, "old.avsc", avroRecordV1)
	newPath := writeContract(t, dir, "new.avsc", avroRecordV1)

	var out bytes.Buffer
	err := checkCompat(oldPath, newPath, "", "FULL", "json", &out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "FULL", decoded["level"])
}

func TestCheckCompatFlagValidation(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, checkCompat("", "new.avsc", "", "BACKWARD", "text", &out))
	assert.Error(t, checkCompat("old.avsc", "new.avsc", "", "SIDEWAYS", "text", &out))
	assert.Error(t, checkCompat("old.avsc", "new.avsc", "", "BACKWARD", "xml", &out))
}
