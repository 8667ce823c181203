package services

import (
	"testing"

	"github.com/territorio-digital/functions/internal/models"
)

func TestCasaTally_CountsWorkedHouses(t *testing.T) {
	casas := []models.Casa{
		{Number: "1", Status: true},
		{Number: "2", Status: false},
		{Number: "3", Status: true},
	}

	total, done := casaTally(casas)

	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if done != 2 {
		t.Fatalf("expected done 2, got %d", done)
	}
}

func TestCasaTally_EmptyQuadra(t *testing.T) {
	total, done := casaTally(nil)

	if total != 0 || done != 0 {
		t.Fatalf("expected 0/0 for empty quadra, got %d/%d", total, done)
	}
}

func TestRollupQuadras_SumsSiblings(t *testing.T) {
	quadras := []models.Quadra{
		{Name: "A", TotalHouses: 10, HousesDone: 4},
		{Name: "B", TotalHouses: 6, HousesDone: 6},
	}

	r := rollupQuadras(quadras)

	if r.QuadraCount != 2 {
		t.Fatalf("expected quadraCount 2, got %d", r.QuadraCount)
	}
	if r.TotalHouses != 16 {
		t.Fatalf("expected totalHouses 16, got %d", r.TotalHouses)
	}
	if r.HousesDone != 10 {
		t.Fatalf("expected housesDone 10, got %d", r.HousesDone)
	}
	if r.Progress != 10.0/16.0 {
		t.Fatalf("expected progress %v, got %v", 10.0/16.0, r.Progress)
	}
}

func TestRollupQuadras_NoHousesMeansZeroProgress(t *testing.T) {
	r := rollupQuadras([]models.Quadra{{Name: "A"}})

	if r.Progress != 0 {
		t.Fatalf("expected progress 0 when no houses, got %v", r.Progress)
	}
	if r.QuadraCount != 1 {
		t.Fatalf("expected quadraCount 1, got %d", r.QuadraCount)
	}
}

func TestRollupQuadras_EmptyTerritory(t *testing.T) {
	r := rollupQuadras(nil)

	if r != (TerritoryRollup{}) {
		t.Fatalf("expected zero rollup for empty territory, got %+v", r)
	}
}

func TestRollupTerritories_RuralExcludedFromSums(t *testing.T) {
	territories := []models.Territory{
		{Type: models.TerritoryTypeUrban, QuadraCount: 3, Stats: models.TerritoryStats{TotalHouses: 30, HousesDone: 12}},
		{Type: models.TerritoryTypeRural, QuadraCount: 9, Stats: models.TerritoryStats{TotalHouses: 99, HousesDone: 99}},
		{Type: "", QuadraCount: 2, Stats: models.TerritoryStats{TotalHouses: 20, HousesDone: 5}},
	}

	r := rollupTerritories(territories)

	if r.TerritoryCount != 2 {
		t.Fatalf("expected 2 urban territories (unset type counts as urban), got %d", r.TerritoryCount)
	}
	if r.RuralTerritoryCount != 1 {
		t.Fatalf("expected 1 rural territory, got %d", r.RuralTerritoryCount)
	}
	if r.TotalQuadras != 5 {
		t.Fatalf("expected totalQuadras 5, got %d", r.TotalQuadras)
	}
	if r.TotalHouses != 50 {
		t.Fatalf("expected totalHouses 50, got %d", r.TotalHouses)
	}
	if r.TotalHousesDone != 17 {
		t.Fatalf("expected totalHousesDone 17, got %d", r.TotalHousesDone)
	}
}

func TestProgressOf(t *testing.T) {
	if p := progressOf(0, 0); p != 0 {
		t.Fatalf("expected 0 progress for 0/0, got %v", p)
	}
	if p := progressOf(1, 4); p != 0.25 {
		t.Fatalf("expected 0.25, got %v", p)
	}
	if p := progressOf(4, 4); p != 1 {
		t.Fatalf("expected 1, got %v", p)
	}
}
