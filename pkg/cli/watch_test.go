package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/compatibility"
)

func TestWatchOnceVerdicts(t *testing.T) {
	dir := t.TempDir()
	baseline := writeContract(t, dir, "baseline.avsc", avroRecordV1)
	candidate := writeContract(t, dir, "candidate.avsc", avroRecordV2)

	cache, err := newResultCache(8)
	require.NoError(t, err)
	engine := compatibility.NewEngine()

	var out bytes.Buffer
	watchOnce(cache, engine, baseline, candidate, "", compatibility.ModeBackward, &out)
	assert.Contains(t, out.String(), "OK")

	out.Reset()
	writeContract(t, dir, "candidate.avsc", avroRecordV3)
	watchOnce(cache, engine, baseline, candidate, "", compatibility.ModeBackward, &out)
	assert.Contains(t, out.String(), "FAIL")

	out.Reset()
	writeContract(t, dir, "candidate.avsc", "{{{")
	watchOnce(cache, engine, baseline, candidate, "", compatibility.ModeBackward, &out)
	assert.Contains(t, out.String(), "ERROR")
}

func TestWatchValidation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var out bytes.Buffer
	assert.Error(t, watch(ctx, "", "baseline.avsc", "", "BACKWARD", 0, &out))
	assert.Error(t, watch(ctx, "candidate.avsc", "baseline.avsc", "", "SIDEWAYS", 0, &out))
}
