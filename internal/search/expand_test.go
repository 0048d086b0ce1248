package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encontro/venues-cli/internal/venue"
)

var defaultSteps = []int{2000, 5000, 10000, 20000}

func TestSearchWithExpansion_StopsAtFirstNonEmptyStep(t *testing.T) {
	ms := &mockSearcher{byRadius: map[int][]venue.Venue{
		10000: {{ID: "pl-1"}},
	}}
	e := NewExpander(ms, defaultSteps)

	venues, err := e.SearchWithExpansion(context.Background(), -23.55, -46.63, 2000)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, []int{2000, 5000, 10000}, ms.calls, "must not call 20000")
}

func TestSearchWithExpansion_StartsAtStepMatchingStartRadius(t *testing.T) {
	ms := &mockSearcher{byRadius: map[int][]venue.Venue{
		5000: {{ID: "pl-1"}},
	}}
	e := NewExpander(ms, defaultSteps)

	_, err := e.SearchWithExpansion(context.Background(), -23.55, -46.63, 5000)
	require.NoError(t, err)
	assert.Equal(t, []int{5000}, ms.calls)
}

func TestSearchWithExpansion_StartRadiusBetweenSteps(t *testing.T) {
	ms := &mockSearcher{byRadius: map[int][]venue.Venue{}}
	e := NewExpander(ms, defaultSteps)

	venues, err := e.SearchWithExpansion(context.Background(), -23.55, -46.63, 3000)
	require.NoError(t, err)
	assert.Empty(t, venues)
	assert.Equal(t, []int{5000, 10000, 20000}, ms.calls, "starts at first step >= startRadius")
}

func TestSearchWithExpansion_EmptyAtAllSteps(t *testing.T) {
	ms := &mockSearcher{}
	e := NewExpander(ms, defaultSteps)

	venues, err := e.SearchWithExpansion(context.Background(), -23.55, -46.63, 2000)
	require.NoError(t, err, "no venues found is a valid terminal outcome")
	assert.Empty(t, venues)
	assert.Equal(t, defaultSteps, ms.calls)
}

func TestSearchWithExpansion_ErrorShortCircuits(t *testing.T) {
	ms := &mockSearcher{err: ErrRateLimited}
	e := NewExpander(ms, defaultSteps)

	_, err := e.SearchWithExpansion(context.Background(), -23.55, -46.63, 2000)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, []int{2000}, ms.calls, "stops at the first error")
}

func TestSearchWithExpansion_StartRadiusBeyondLastStep(t *testing.T) {
	ms := &mockSearcher{}
	e := NewExpander(ms, defaultSteps)

	_, err := e.SearchWithExpansion(context.Background(), -23.55, -46.63, 50000)
	require.NoError(t, err)
	assert.Equal(t, []int{20000}, ms.calls, "falls back to the final step")
}
