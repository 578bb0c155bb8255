package core

import (
	"testing"
	"time"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"CALL", DirectionCall, false},
		{"call", DirectionCall, false},
		{" Put ", DirectionPut, false},
		{"PUT", DirectionPut, false},
		{"BUY", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirection(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCandle_IsValid(t *testing.T) {
	now := time.Now()
	c := Candle{
		Symbol:      "R_75",
		Granularity: 60,
		Epoch:       now,
		Open:        100.5,
		High:        101.2,
		Low:         100.1,
		Close:       100.9,
	}
	if !c.IsValid() {
		t.Error("expected valid candle")
	}

	tests := []struct {
		name string
		c    Candle
	}{
		{"zero epoch", Candle{Open: 100, High: 101, Low: 99, Close: 100}},
		{"high below low", Candle{Epoch: now, Open: 100, High: 98, Low: 99, Close: 100}},
		{"close outside range", Candle{Epoch: now, Open: 100, High: 101, Low: 99, Close: 102}},
		{"open outside range", Candle{Epoch: now, Open: 98, High: 101, Low: 99, Close: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.c.IsValid() {
				t.Error("expected invalid candle")
			}
		})
	}
}

func TestDirection_Constants(t *testing.T) {
	if string(DirectionCall) != "CALL" || string(DirectionPut) != "PUT" {
		t.Errorf("unexpected direction constants: %s, %s", DirectionCall, DirectionPut)
	}
}
