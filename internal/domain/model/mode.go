package model

import "fmt"

// DataMode selects where scheduled ingestion pulls bars from.
type DataMode int

const (
	// LiveMode pulls from the brokerage gateway.
	LiveMode DataMode = iota
	// TestMode pulls from the synthetic generator.
	TestMode
)

func (m DataMode) String() string {
	switch m {
	case LiveMode:
		return "live"
	case TestMode:
		return "test"
	default:
		return "unknown"
	}
}

// ParseDataMode maps a configuration string onto a mode.
func ParseDataMode(s string) (DataMode, error) {
	switch s {
	case "", "live":
		return LiveMode, nil
	case "test":
		return TestMode, nil
	default:
		return LiveMode, fmt.Errorf("unknown data mode %q (use: live, test)", s)
	}
}

func (m DataMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
