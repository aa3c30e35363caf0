package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffNoChanges(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeContract(t, dir, "old.avsc", avroRecordV1)
	newPath := writeContract(t, dir, "new.avsc", avroRecordV1)

	var out bytes.Buffer
	require.NoError(t, runDiffFiles(oldPath, newPath, "", &out))
	assert.Contains(t, out.String(), "No differences.")
}

func TestDiffListsChanges(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeContract(t, dir, "old.avsc", avroRecordV1)
	newPath := writeContract(t, dir, "new.avsc", avroRecordV3)

	var out bytes.Buffer
	require.NoError(t, runDiffFiles(oldPath, newPath, "", &out))

	output := out.String()
	assert.Contains(t, output, "removed")
	assert.Contains(t, output, "User.nickname")
	assert.Contains(t, output, "added")
	assert.Contains(t, output, "User.email")
	assert.Contains(t, output, "2 change(s)")
}

func TestDiffRequiresBothPaths(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runDiffFiles("", "new.avsc", "", &out))
	assert.Error(t, runDiffFiles("old.avsc", "", "", &out))
}
