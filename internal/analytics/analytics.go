package analytics

import (
	"context"

	"sentinel-modbot/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Total     int
	Automatic int
	ByAction  map[string]int
	Recent    []storage.Case
}

// Report summarises every case recorded against targetID in guildID and
// keeps up to recent of the newest.
func (s *Service) Report(ctx context.Context, guildID, targetID string, recent int) (Report, error) {
	cases, err := s.store.ListCases(ctx, guildID, targetID, 0)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByAction: make(map[string]int)}
	for _, c := range cases {
		report.Total++
		report.ByAction[c.Action]++
		if c.Automatic {
			report.Automatic++
		}
	}
	if recent > len(cases) {
		recent = len(cases)
	}
	report.Recent = cases[:recent]
	return report, nil
}
