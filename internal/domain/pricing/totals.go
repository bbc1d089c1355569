// Package pricing computes proposal totals from inputs and a catalog snapshot.
//
// Everything here is pure: no clock, no randomness, no I/O.
package pricing

import (
	"math"

	"clearing_proposals/internal/domain/entities"
)

const (
	// DepositRate is the share of the total collected on acceptance.
	DepositRate = 0.20
	// ObstacleRate is added to the subtotal once per reported obstacle.
	ObstacleRate = 0.05
	// FarZoneMiles is the distance beyond which FarZoneRate applies.
	FarZoneMiles = 30.0
	FarZoneRate  = 0.10
)

// FallbackPackage is used when the catalog has no packages at all.
var FallbackPackage = entities.Package{
	ID:           "medium",
	Name:         "Medium (up to 6\" DBH)",
	MaxDBHInches: 6,
	PricePerAcre: 2500,
	Default:      true,
}

// LookupPackage finds a package by id.
func LookupPackage(id string, packages []entities.Package) (entities.Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return entities.Package{}, false
}

// DefaultPackage returns the package flagged as default, else the first one,
// else FallbackPackage.
func DefaultPackage(packages []entities.Package) entities.Package {
	for _, p := range packages {
		if p.Default {
			return p
		}
	}
	if len(packages) > 0 {
		return packages[0]
	}
	return FallbackPackage
}

// ResolvePackage applies the fallback policy: an unknown package id is priced
// with the default package and reported through the second return value.
func ResolvePackage(id string, packages []entities.Package) (pkg entities.Package, fallback bool) {
	if p, ok := LookupPackage(id, packages); ok {
		return p, false
	}
	return DefaultPackage(packages), true
}

// ComputeTotals prices inputs against a package and service catalog.
// Non-positive or non-finite acreage and distances are clamped to zero.
func ComputeTotals(in entities.ProposalInputs, packages []entities.Package, services []entities.Service) entities.ComputedTotals {
	acreage := clamp(in.Acreage)
	pkg, fallback := ResolvePackage(in.PackageID, packages)

	subtotal := acreage * clamp(pkg.PricePerAcre)
	obstacles := subtotal * ObstacleRate * float64(len(in.Obstacles))

	distance := 0.0
	if clamp(in.DistanceMiles) > FarZoneMiles {
		distance = subtotal * FarZoneRate
	}

	servicesTotal := 0.0
	for _, id := range dedupe(in.SelectedServiceIDs) {
		svc, ok := lookupService(id, services)
		if !ok {
			continue
		}
		price := clamp(svc.Price)
		if svc.PerAcre {
			price *= acreage
		}
		servicesTotal += price
	}

	surcharges := obstacles + distance
	total := subtotal + surcharges + servicesTotal

	return entities.ComputedTotals{
		PackageID:          pkg.ID,
		PackageFallback:    fallback,
		Subtotal:           roundCents(subtotal),
		ObstacleAdjustment: roundCents(obstacles),
		DistanceSurcharge:  roundCents(distance),
		Surcharges:         roundCents(surcharges),
		ServicesTotal:      roundCents(servicesTotal),
		Total:              roundCents(total),
		DepositAmount:      roundCents(total * DepositRate),
	}
}

func lookupService(id string, services []entities.Service) (entities.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return entities.Service{}, false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
