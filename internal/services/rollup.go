package services

import "github.com/territorio-digital/functions/internal/models"

// The rollup math is deliberately a full rescan of the immediate children
// rather than an incremental counter: every recomputation starts from the
// current child-set, so missed or duplicated trigger deliveries cannot make
// the aggregates drift.

// casaTally counts a quadra's casas and how many of them are worked.
func casaTally(casas []models.Casa) (total, done int) {
	for _, c := range casas {
		total++
		if c.Status {
			done++
		}
	}
	return total, done
}

// TerritoryRollup is the aggregate a territory stores about its quadras.
type TerritoryRollup struct {
	TotalHouses int
	HousesDone  int
	QuadraCount int
	Progress    float64
}

func rollupQuadras(quadras []models.Quadra) TerritoryRollup {
	var r TerritoryRollup
	for _, q := range quadras {
		r.QuadraCount++
		r.TotalHouses += q.TotalHouses
		r.HousesDone += q.HousesDone
	}
	r.Progress = progressOf(r.HousesDone, r.TotalHouses)
	return r
}

func progressOf(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// CongregationRollup is the aggregate a congregation stores about its
// territories. Rural territories only increment their own counter; houses
// and quadras are summed over urban territories alone.
type CongregationRollup struct {
	TerritoryCount      int
	RuralTerritoryCount int
	TotalQuadras        int
	TotalHouses         int
	TotalHousesDone     int
}

func rollupTerritories(territories []models.Territory) CongregationRollup {
	var r CongregationRollup
	for _, t := range territories {
		if t.Type == models.TerritoryTypeRural {
			r.RuralTerritoryCount++
			continue
		}
		r.TerritoryCount++
		r.TotalQuadras += t.QuadraCount
		r.TotalHouses += t.Stats.TotalHouses
		r.TotalHousesDone += t.Stats.HousesDone
	}
	return r
}
