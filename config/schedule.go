package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"matka/models"
)

// Schedule is the static market table, loaded from TOML:
//
//	[[market]]
//	name = "Kalyan"
//	open = "15:45"
//	close = "16:45"
//	result = "16:50"
type Schedule struct {
	Markets []ScheduledMarket `toml:"market"`
}

// ScheduledMarket is one row of the schedule file.
type ScheduledMarket struct {
	Name     string `toml:"name"`
	Open     string `toml:"open"`
	Close    string `toml:"close"`
	Result   string `toml:"result"`
	Disabled bool   `toml:"disabled"`
}

// DefaultSchedule is used when no schedule file is configured.
func DefaultSchedule() *Schedule {
	return &Schedule{Markets: []ScheduledMarket{
		{Name: "Kalyan", Open: "15:45", Close: "16:45", Result: "16:50"},
		{Name: "Milan Day", Open: "09:30", Close: "10:30", Result: "10:35"},
		{Name: "Milan Night", Open: "21:30", Close: "22:30", Result: "22:35"},
		{Name: "Rajdhani Day", Open: "13:40", Close: "14:40", Result: "14:45"},
		{Name: "Rajdhani Night", Open: "19:40", Close: "20:40", Result: "20:45"},
		{Name: "Time Bazar", Open: "10:30", Close: "11:30", Result: "11:35"},
		{Name: "Sridevi", Open: "11:30", Close: "12:30", Result: "12:35"},
		{Name: "Sridevi Night", Open: "20:30", Close: "21:30", Result: "21:35"},
	}}
}

// LoadSchedule reads the schedule file at path, or returns the default table when path is empty.
func LoadSchedule(path string) (*Schedule, error) {
	if path == "" {
		return DefaultSchedule(), nil
	}

	var s Schedule
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("failed to decode market schedule %s: %w", path, err)
	}
	if len(s.Markets) == 0 {
		return nil, fmt.Errorf("market schedule %s defines no markets", path)
	}
	if _, err := s.ToMarkets(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToMarkets converts the schedule into validated market rows.
func (s *Schedule) ToMarkets() ([]*models.Market, error) {
	seen := make(map[string]bool, len(s.Markets))
	markets := make([]*models.Market, 0, len(s.Markets))
	for _, sm := range s.Markets {
		m := &models.Market{
			Name:       sm.Name,
			OpenTime:   sm.Open,
			CloseTime:  sm.Close,
			ResultTime: sm.Result,
			Active:     !sm.Disabled,
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("market %q is listed twice", m.Name)
		}
		seen[m.Name] = true
		markets = append(markets, m)
	}
	return markets, nil
}
