package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfigMissing)
}

func TestS3_KeyPrefix(t *testing.T) {
	store, err := NewS3(S3Config{Bucket: "b", Prefix: "archive/"})
	require.NoError(t, err)
	assert.Equal(t, "archive/runs/1.json", store.key("runs/1.json"))

	store, err = NewS3(S3Config{Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "runs/1.json", store.key("runs/1.json"))
}
