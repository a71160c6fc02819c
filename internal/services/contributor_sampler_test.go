package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/gitscore/internal/models"
)

func makeContributors(n int) []models.Contributor {
	contributors := make([]models.Contributor, n)
	for i := 0; i < n; i++ {
		contributors[i] = models.Contributor{
			Login:         fmt.Sprintf("user%d", i+1),
			Rank:          i + 1,
			Contributions: 1000 - i,
		}
	}
	return contributors
}

func TestSelectFullPopulation(t *testing.T) {
	sampler := NewContributorSampler(30)

	selected := sampler.Select(makeContributors(100))

	require.Len(t, selected, 10)

	seen := make(map[string]bool)
	for _, c := range selected {
		assert.False(t, seen[c.Login], "duplicate pick %s", c.Login)
		seen[c.Login] = true
		// All picks come from ranks 31-100; the top 30 are never sampled.
		assert.Greater(t, c.Rank, 30)
		assert.LessOrEqual(t, c.Rank, 100)
	}
}

func TestSelectStableSampleSize(t *testing.T) {
	sampler := NewContributorSampler(30)
	contributors := makeContributors(100)

	// The picks are random but the sample size never varies.
	for i := 0; i < 20; i++ {
		assert.Len(t, sampler.Select(contributors), 10)
	}
}

func TestSelectBelowMinimumPopulation(t *testing.T) {
	sampler := NewContributorSampler(30)

	assert.Nil(t, sampler.Select(makeContributors(25)))
	assert.Nil(t, sampler.Select(nil))
}

func TestSelectShortBandsDegrade(t *testing.T) {
	sampler := NewContributorSampler(30)

	// With 45 contributors the 30-40 band is full, 40-50 degrades to the 5
	// remaining, and the higher bands are empty.
	selected := sampler.Select(makeContributors(45))
	assert.Len(t, selected, 4)

	// With exactly 31 there is a single contributor past rank 30.
	selected = sampler.Select(makeContributors(31))
	require.Len(t, selected, 1)
	assert.Equal(t, 31, selected[0].Rank)
}
