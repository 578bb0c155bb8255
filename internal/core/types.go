package core

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the side of a binary options contract.
type Direction string

const (
	DirectionCall Direction = "CALL"
	DirectionPut  Direction = "PUT"
)

// ParseDirection converts a string into a Direction.
// Matching is case-insensitive; unknown values return an error.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL":
		return DirectionCall, nil
	case "PUT":
		return DirectionPut, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Candle represents a single OHLC bar from the price feed.
// Epoch is the bar open time; Granularity is the bar length in seconds.
type Candle struct {
	Symbol      string
	Granularity int
	Epoch       time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
}

// IsValid checks that the candle carries a usable price range.
func (c Candle) IsValid() bool {
	return !c.Epoch.IsZero() && c.Low > 0 && c.High >= c.Low &&
		c.Open >= c.Low && c.Open <= c.High &&
		c.Close >= c.Low && c.Close <= c.High
}

// Signal is a directional trade proposal produced by a strategy for the
// current candle. Strength is an integer >= 1; stronger confirmations
// raise it and the stake sizer may reward it with a larger stake.
type Signal struct {
	Direction Direction
	Strength  int
	Reason    string
	Metadata  map[string]any
	At        time.Time
}
