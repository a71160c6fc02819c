package services

import (
	"math/rand"
	"time"

	"github.com/hirewire/gitscore/internal/models"
)

// samplingBands are the half-open rank ranges the sampler draws from. The
// bands deliberately skip the top 30 ranks: superstar contributors are not
// representative hiring candidates, and the tail below rank 100 is mostly
// drive-by accounts.
var samplingBands = []struct {
	lo, hi int
}{
	{30, 40},
	{40, 50},
	{50, 60},
	{60, 70},
	{70, 100},
}

const picksPerBand = 2

// ContributorSampler selects a stratified subset of contributors across rank
// bands.
type ContributorSampler struct {
	minPopulation int
	rng           *rand.Rand
}

// NewContributorSampler creates a sampler. Populations below minPopulation
// yield an empty sample.
func NewContributorSampler(minPopulation int) *ContributorSampler {
	return &ContributorSampler{
		minPopulation: minPopulation,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select draws up to 2 contributors uniformly at random from each rank band.
// Bands short of the population degrade to whatever remains past the band's
// lower bound. Populations below the minimum return an empty sample; callers
// treat that as "repository too small to sample", not as an error.
func (s *ContributorSampler) Select(contributors []models.Contributor) []models.Contributor {
	if len(contributors) < s.minPopulation {
		return nil
	}

	var selected []models.Contributor
	for _, band := range samplingBands {
		selected = append(selected, s.pickFromBand(contributors, band.lo, band.hi)...)
	}
	return selected
}

func (s *ContributorSampler) pickFromBand(contributors []models.Contributor, lo, hi int) []models.Contributor {
	var pool []models.Contributor
	switch {
	case len(contributors) >= hi:
		pool = contributors[lo:hi]
	case len(contributors) > lo:
		pool = contributors[lo:]
	default:
		return nil
	}

	if len(pool) <= picksPerBand {
		return append([]models.Contributor(nil), pool...)
	}

	picked := make([]models.Contributor, 0, picksPerBand)
	for _, idx := range s.rng.Perm(len(pool))[:picksPerBand] {
		picked = append(picked, pool[idx])
	}
	return picked
}
