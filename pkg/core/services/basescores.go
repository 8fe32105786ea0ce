package services

import (
	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

// DeriveBaseScores gives each staff member a starting fairness score of
// -perShift for every regular shift they already work in the horizon.
// Staff who work no regular shifts start at 0 and are left out of the map.
func DeriveBaseScores(entries []db.ScheduleEntry, staffIDs, dates []string, cfg config.BaseScoreConfig) map[string]float64 {
	roster := db.BuildRoster(entries, staffIDs, dates, "")
	counts := db.CountCodes(roster, cfg.RegularCodes)

	perShift := cfg.Weight()
	scores := make(map[string]float64, len(counts))
	for staffID, count := range counts {
		if count == 0 || perShift == 0 {
			continue
		}
		scores[staffID] = -perShift * float64(count)
	}
	return scores
}
