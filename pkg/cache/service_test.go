package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestNoopAlwaysFetches(t *testing.T) {
	var c Service = Noop{}
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return item{ID: "act_1", Count: 3}, nil
	}

	var got item
	require.NoError(t, c.GetOrSet(context.Background(), "k", 0, fetch, &got))
	require.NoError(t, c.GetOrSet(context.Background(), "k", 0, fetch, &got))

	assert.Equal(t, 2, calls)
	assert.Equal(t, item{ID: "act_1", Count: 3}, got)
	assert.ErrorIs(t, c.Get(context.Background(), "k", &got), ErrCacheMiss)
}

func TestNoopPropagatesFetcherError(t *testing.T) {
	boom := errors.New("db down")
	var got item
	err := Noop{}.GetOrSet(context.Background(), "k", 0, func() (interface{}, error) { return nil, boom }, &got)
	assert.ErrorIs(t, err, boom)
}
