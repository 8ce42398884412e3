package domain

import (
	"fmt"
	"strings"
)

type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (e RiskLevel) String() string {
	return []string{"low", "medium", "high"}[e]
}

func (e RiskLevel) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *RiskLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "low":
		*e = RiskLow
	case "medium":
		*e = RiskMedium
	case "high":
		*e = RiskHigh
	default:
		return fmt.Errorf("unknown risk level: %q", text)
	}
	return nil
}

type SortDirection int

const (
	Descending SortDirection = iota
	Ascending
)

func (e SortDirection) String() string {
	return []string{"desc", "asc"}[e]
}

// ParseSortDirection falls back to Descending for anything but "asc".
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return Ascending
	}
	return Descending
}

type ArbitrageWatcherModeEnum int

const (
	Scheduled ArbitrageWatcherModeEnum = iota
	Stream
)

func (e ArbitrageWatcherModeEnum) String() string {
	return []string{"Scheduled", "Stream"}[e]
}

// ParseWatcherMode falls back to Scheduled for anything but "stream".
func ParseWatcherMode(s string) ArbitrageWatcherModeEnum {
	if strings.EqualFold(strings.TrimSpace(s), "stream") {
		return Stream
	}
	return Scheduled
}
