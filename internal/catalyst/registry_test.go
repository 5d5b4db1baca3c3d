package catalyst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/models"
)

func registryFixture() *Registry {
	mk := func(id string, kind models.CatalystKind, days int, confidence float64) models.Catalyst {
		est := asOf.AddDate(0, 0, days)
		return models.Catalyst{
			CompanyID:     id,
			Kind:          kind,
			EstimatedDate: est,
			Confidence:    confidence,
			Tier:          ClassifyTier(est, asOf),
		}
	}
	return NewRegistry(map[string][]models.Catalyst{
		"alpha": {mk("alpha", models.CatalystARRThreshold, -10, 0.75), mk("alpha", models.CatalystCFOHire, 20, 0.85)},
		"beta":  {mk("beta", models.CatalystPatentGrant, 3, 0.65), mk("beta", models.CatalystMAExit, 400, 0.35)},
	}, asOf)
}

func TestRegistryNext(t *testing.T) {
	r := registryFixture()

	next, ok := r.Next("alpha")
	require.True(t, ok)
	assert.Equal(t, models.CatalystCFOHire, next.Kind, "elapsed catalysts are skipped")

	_, ok = r.Next("missing")
	assert.False(t, ok)
}

func TestRegistryForCompany(t *testing.T) {
	r := registryFixture()

	alpha := r.ForCompany("alpha")
	require.Len(t, alpha, 2)
	assert.Equal(t, models.CatalystARRThreshold, alpha[0].Kind)
	assert.Equal(t, models.CatalystCFOHire, alpha[1].Kind)
	assert.Empty(t, r.ForCompany("missing"))

	reversed := NewRegistry(map[string][]models.Catalyst{"alpha": {alpha[1], alpha[0]}}, asOf)
	assert.Equal(t, alpha, reversed.ForCompany("alpha"))
}

func TestRegistryFilter(t *testing.T) {
	r := registryFixture()

	all := r.Filter("", "", 0)
	require.Len(t, all, 4)
	assert.Equal(t, models.CatalystARRThreshold, all[0].Kind)
	assert.Equal(t, models.CatalystMAExit, all[3].Kind)

	within30 := r.Filter("", "", 30)
	require.Len(t, within30, 2)
	assert.Equal(t, "beta", within30[0].CompanyID)
	assert.Equal(t, "alpha", within30[1].CompanyID)

	assert.Len(t, r.Filter(models.CatalystMAExit, "", 0), 1)
	assert.Len(t, r.Filter("", models.TierImminent, 0), 1)
	assert.Empty(t, r.Filter(models.CatalystIPOFiling, "", 0))
}

func TestRegistryByUrgency(t *testing.T) {
	r := registryFixture()

	ranked := r.ByUrgency()
	require.Len(t, ranked, 4)
	assert.Equal(t, models.CatalystPatentGrant, ranked[0].Kind, "imminent catalyst ranks first")
	assert.Equal(t, models.CatalystMAExit, ranked[3].Kind, "distant low-confidence catalyst ranks last")
}

func TestRegistryTierCounts(t *testing.T) {
	counts := registryFixture().TierCounts()
	assert.Equal(t, 1, counts[models.TierElapsed])
	assert.Equal(t, 1, counts[models.TierImminent])
	assert.Equal(t, 1, counts[models.TierNearTerm])
	assert.Equal(t, 1, counts[models.TierDistant])
}

func TestUrgencyDecays(t *testing.T) {
	decay := DefaultTierDecayConfig()
	near := models.Catalyst{EstimatedDate: asOf.AddDate(0, 0, 10), Confidence: 1, Tier: models.TierNearTerm}
	far := models.Catalyst{EstimatedDate: asOf.AddDate(0, 0, 25), Confidence: 1, Tier: models.TierNearTerm}
	assert.Greater(t, decay.Urgency(near, asOf), decay.Urgency(far, asOf))

	elapsed := models.Catalyst{EstimatedDate: asOf.AddDate(0, 0, -2), Confidence: 1, Tier: models.TierElapsed}
	imminent := models.Catalyst{EstimatedDate: asOf.AddDate(0, 0, 2), Confidence: 1, Tier: models.TierImminent}
	assert.Less(t, decay.Urgency(elapsed, asOf), decay.Urgency(imminent, asOf))
}
