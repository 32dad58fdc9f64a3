package cmd

import (
	"fmt"

	"portfolio/devserver/store"
)

func openAnalyticsStore() (*store.AnalyticsStore, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s, err := store.NewAnalyticsStore(cfg.AnalyticsFile, logger, store.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("opening analytics store: %w", err)
	}
	return s, nil
}
