package pricing

import (
	"math"
	"testing"

	"clearing_proposals/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPackages() []entities.Package {
	return []entities.Package{
		{ID: "small", Name: "Small", MaxDBHInches: 4, PricePerAcre: 1800},
		{ID: "medium", Name: "Medium", MaxDBHInches: 6, PricePerAcre: 2500, Default: true},
		{ID: "large", Name: "Large", MaxDBHInches: 8, PricePerAcre: 3200},
	}
}

func testServices() []entities.Service {
	return []entities.Service{
		{ID: "stump-grinding", Name: "Stump grinding", Price: 400},
		{ID: "seeding", Name: "Seeding", Price: 150, PerAcre: true},
	}
}

func TestComputeTotals_ReferenceScenario(t *testing.T) {
	in := entities.ProposalInputs{Acreage: 2.5, PackageID: "medium", Obstacles: []string{"fence"}}

	got := ComputeTotals(in, testPackages(), testServices())

	assert.Equal(t, "medium", got.PackageID)
	assert.False(t, got.PackageFallback)
	assert.Equal(t, 6250.0, got.Subtotal)
	assert.Equal(t, 312.5, got.ObstacleAdjustment)
	assert.Equal(t, 312.5, got.Surcharges)
	assert.Equal(t, 6562.5, got.Total)
	assert.Equal(t, 1312.5, got.DepositAmount)
}

func TestComputeTotals_Deterministic(t *testing.T) {
	in := entities.ProposalInputs{
		Acreage:            3.3,
		PackageID:          "large",
		SelectedServiceIDs: []string{"seeding", "stump-grinding"},
		Obstacles:          []string{"creek", "power line"},
		DistanceMiles:      42,
	}
	a := ComputeTotals(in, testPackages(), testServices())
	b := ComputeTotals(in, testPackages(), testServices())
	require.Equal(t, a, b)
	assert.Equal(t, math.Float64bits(a.Total), math.Float64bits(b.Total))
}

func TestComputeTotals_ClampsNonPositiveAcreage(t *testing.T) {
	for _, acreage := range []float64{0, -4, math.NaN(), math.Inf(-1)} {
		got := ComputeTotals(entities.ProposalInputs{Acreage: acreage, PackageID: "medium", Obstacles: []string{"x"}}, testPackages(), testServices())
		assert.Equal(t, 0.0, got.Subtotal)
		assert.Equal(t, 0.0, got.Total)
		assert.Equal(t, 0.0, got.DepositAmount)
	}
}

func TestComputeTotals_UnknownPackageFallsBackToDefault(t *testing.T) {
	got := ComputeTotals(entities.ProposalInputs{Acreage: 1, PackageID: "xl"}, testPackages(), nil)
	assert.True(t, got.PackageFallback)
	assert.Equal(t, "medium", got.PackageID)
	assert.Equal(t, 2500.0, got.Subtotal)

	empty := ComputeTotals(entities.ProposalInputs{Acreage: 1, PackageID: "xl"}, nil, nil)
	assert.True(t, empty.PackageFallback)
	assert.Equal(t, FallbackPackage.PricePerAcre, empty.Subtotal)
}

func TestComputeTotals_FarZoneIsAStep(t *testing.T) {
	base := entities.ProposalInputs{Acreage: 2, PackageID: "medium"}

	base.DistanceMiles = FarZoneMiles
	atThreshold := ComputeTotals(base, testPackages(), nil)
	assert.Equal(t, 0.0, atThreshold.DistanceSurcharge)

	base.DistanceMiles = FarZoneMiles + 0.1
	justOver := ComputeTotals(base, testPackages(), nil)
	base.DistanceMiles = 300
	farOver := ComputeTotals(base, testPackages(), nil)

	assert.Equal(t, 500.0, justOver.DistanceSurcharge)
	assert.Equal(t, justOver.DistanceSurcharge, farOver.DistanceSurcharge)
}

func TestComputeTotals_Services(t *testing.T) {
	in := entities.ProposalInputs{
		Acreage:            2,
		PackageID:          "small",
		SelectedServiceIDs: []string{"seeding", "stump-grinding", "seeding", "unknown"},
	}
	got := ComputeTotals(in, testPackages(), testServices())
	assert.Equal(t, 3600.0, got.Subtotal)
	assert.Equal(t, 700.0, got.ServicesTotal)
	assert.Equal(t, 4300.0, got.Total)
	assert.Equal(t, 860.0, got.DepositAmount)
}
