package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	embedCalls int
	batchCalls int
	batchSizes []int
	err        error
}

func (c *countingEmbedder) vec(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.embedCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.vec(text), nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.batchCalls++
	c.batchSizes = append(c.batchSizes, len(texts))
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = c.vec(t)
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int              { return 2 }
func (c *countingEmbedder) ModelName() string            { return "counting" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error                 { return nil }

func TestNew_NilInner(t *testing.T) {
	_, err := New(nil, 10)
	assert.Error(t, err)
}

func TestEmbed_CachesByText(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 10)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.embedCalls)
	assert.Equal(t, 1, svc.Len())
}

func TestEmbed_ReturnedVectorIsCopy(t *testing.T) {
	svc, err := New(&countingEmbedder{}, 10)
	require.NoError(t, err)
	ctx := context.Background()

	vec, _ := svc.Embed(ctx, "abc")
	vec[0] = 99

	again, _ := svc.Embed(ctx, "abc")
	assert.Equal(t, float32(3), again[0])
}

func TestEmbed_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("down")}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 0, svc.Len())
}

func TestEmbedBatch_OnlyMissesReachInner(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 10)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Embed(ctx, "bb")
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1, 1}, {2, 1}, {3, 1}}, vecs)
	assert.Equal(t, []int{2}, inner.batchSizes)

	_, err = svc.EmbedBatch(ctx, []string{"a", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.batchCalls)
}

func TestEmbedBatch_Eviction(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 2)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.EmbedBatch(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Len())
}

func TestDelegation(t *testing.T) {
	svc, err := New(&countingEmbedder{}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "counting", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
	assert.Equal(t, 0, svc.Len())
}
