package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/casepipe/internal/common"
)

type fakeStore struct {
	url   string
	err   error
	calls int
}

func (f *fakeStore) Put(_ context.Context, pathname string, _ []byte, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url + "/" + pathname, nil
}

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func TestChainUsesPrimaryFirst(t *testing.T) {
	primary := &fakeStore{url: "https://primary"}
	secondary := &fakeStore{url: "https://secondary"}
	c := NewChain(primary, secondary, false, nil)
	c.now = fixedClock

	loc, err := c.Upload(context.Background(), "u1", "file.pdf", []byte("data"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "u1/1700000000000-file.pdf", loc.Pathname)
	assert.Equal(t, "https://primary/u1/1700000000000-file.pdf", loc.URL)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestChainFallsBackOnPrimaryError(t *testing.T) {
	primary := &fakeStore{err: errors.New("bucket gone")}
	secondary := &fakeStore{url: "https://secondary"}
	c := NewChain(primary, secondary, false, nil)
	c.now = fixedClock

	loc, err := c.Upload(context.Background(), "u1", "file.pdf", []byte("data"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.True(t, strings.HasPrefix(loc.URL, "https://secondary/"))
}

func TestChainSynthesizesDataURLInDevelopment(t *testing.T) {
	c := NewChain(nil, nil, true, nil)
	c.now = fixedClock

	loc, err := c.Upload(context.Background(), "u1", "file.pdf", []byte("data"), "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc.URL, "data:application/pdf;base64,"))
	assert.Equal(t, "u1/1700000000000-file.pdf", loc.Pathname)
}

func TestChainFailsWithoutBackendsOutsideDevelopment(t *testing.T) {
	c := NewChain(nil, nil, false, nil)
	c.now = fixedClock

	_, err := c.Upload(context.Background(), "u1", "file.pdf", []byte("data"), "application/pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfig))
}

func TestChainEveryBackendFailingIsAnUpstreamFailure(t *testing.T) {
	primary := &fakeStore{err: errors.New("down")}
	secondary := &fakeStore{err: errors.New("also down")}
	c := NewChain(primary, secondary, false, nil)
	c.now = fixedClock

	_, err := c.Upload(context.Background(), "u1", "file.pdf", []byte("data"), "application/pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUpstream))
	assert.False(t, errors.Is(err, common.ErrConfig))
	assert.Contains(t, err.Error(), "also down")
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestChainSingleBackendFailingIsAnUpstreamFailure(t *testing.T) {
	primary := &fakeStore{err: errors.New("bucket gone")}
	c := NewChain(primary, nil, false, nil)
	c.now = fixedClock

	_, err := c.Upload(context.Background(), "u1", "file.pdf", []byte("data"), "application/pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUpstream))
	assert.Contains(t, err.Error(), "bucket gone")
}
