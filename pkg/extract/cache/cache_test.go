package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/athapong/notegraph/pkg/graph/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	calls int
	err   error
}

func (c *countingExtractor) Extract(text string) (*entity.Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &entity.Result{Raw: text, Structured: entity.NewStructuredEntities()}, nil
}

type labelExtractor struct {
	label string
	calls int
}

func (l *labelExtractor) Extract(text string) (*entity.Result, error) {
	l.calls++
	return &entity.Result{Raw: l.label + ": " + text, Structured: entity.NewStructuredEntities()}, nil
}

func TestCache_HitAndMiss(t *testing.T) {
	ex := &countingExtractor{}
	c := New(ex, 8, time.Minute)

	hits := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(cacheType))
	misses := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(cacheType))

	first, err := c.Extract("call Sam tomorrow")
	require.NoError(t, err)
	second, err := c.Extract("call Sam tomorrow")
	require.NoError(t, err)
	_, err = c.Extract("different note")
	require.NoError(t, err)

	assert.Equal(t, 2, ex.calls)
	assert.Same(t, first, second)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(cacheType)))
	assert.Equal(t, misses+2, testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(cacheType)))
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	ex := &countingExtractor{err: errors.New("tagger down")}
	c := New(ex, 8, time.Minute)

	_, err := c.Extract("note")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	ex.err = nil
	result, err := c.Extract("note")
	require.NoError(t, err)
	assert.Equal(t, "note", result.Raw)
	assert.Equal(t, 2, ex.calls)
}

func TestCache_Expiry(t *testing.T) {
	ex := &countingExtractor{}
	c := New(ex, 8, 20*time.Millisecond)

	_, err := c.Extract("note")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)

	_, err = c.Extract("note")
	require.NoError(t, err)
	assert.Equal(t, 2, ex.calls)
}

func TestCache_EvictsOldest(t *testing.T) {
	ex := &countingExtractor{}
	c := New(ex, 2, time.Minute)

	for _, text := range []string{"a", "b", "c"} {
		_, err := c.Extract(text)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	_, err := c.Extract("a")
	require.NoError(t, err)
	assert.Equal(t, 4, ex.calls)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_SeparateExtractorsDoNotShare(t *testing.T) {
	plain := &countingExtractor{}
	tagged := &labelExtractor{label: "tagged"}

	a := New(plain, 8, time.Minute)
	b := New(tagged, 8, time.Minute)

	first, err := a.Extract("Met Sam at Acme")
	require.NoError(t, err)
	second, err := b.Extract("Met Sam at Acme")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, "Met Sam at Acme", first.Raw)
	assert.Equal(t, "tagged: Met Sam at Acme", second.Raw)
	assert.Equal(t, 1, plain.calls)
	assert.Equal(t, 1, tagged.calls)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("note"), Key("note"))
	assert.NotEqual(t, Key("note"), Key("Note"))
	assert.Len(t, Key(""), 64)
}

func TestNew_Defaults(t *testing.T) {
	c := New(&countingExtractor{}, 0, 0)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
}
