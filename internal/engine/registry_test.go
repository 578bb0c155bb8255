package engine_test

import (
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSizer captures sizer updates in order.
type recordingSizer struct {
	updates []struct {
		won    bool
		profit float64
		stake  float64
	}
}

func (s *recordingSizer) NextStake(cash float64, strength int) float64 { return 10 }

func (s *recordingSizer) Update(won bool, profit, stake float64) {
	s.updates = append(s.updates, struct {
		won    bool
		profit float64
		stake  float64
	}{won, profit, stake})
}

func TestRegistry_Open_Validation(t *testing.T) {
	reg := engine.NewRegistry(engine.NewLedger(1000), &recordingSizer{})
	now := time.Now()

	_, err := reg.Open(core.DirectionCall, 100, now, 0, 0.95, time.Minute)
	assert.Error(t, err, "zero stake must be rejected")

	_, err = reg.Open(core.DirectionCall, 100, now, -5, 0.95, time.Minute)
	assert.Error(t, err, "negative stake must be rejected")

	_, err = reg.Open(core.DirectionCall, 100, now, 10, -0.1, time.Minute)
	assert.Error(t, err, "negative payout must be rejected")

	c, err := reg.Open(core.DirectionPut, 100, now, 10, 0.95, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOpen, c.Status)
	assert.Equal(t, now.Add(time.Minute), c.ExpiryTime)
	assert.Equal(t, 1, reg.OpenCount())
}

func TestRegistry_SettleExpired_Outcomes(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		direction core.Direction
		entry     float64
		exit      float64
		want      engine.ContractStatus
	}{
		{"call wins above entry", core.DirectionCall, 100, 100.01, engine.StatusWon},
		{"call loses below entry", core.DirectionCall, 100, 99.99, engine.StatusLost},
		{"call loses on exact tie", core.DirectionCall, 100, 100, engine.StatusLost},
		{"put wins below entry", core.DirectionPut, 100, 99.99, engine.StatusWon},
		{"put loses above entry", core.DirectionPut, 100, 100.01, engine.StatusLost},
		{"put loses on exact tie", core.DirectionPut, 100, 100, engine.StatusLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := engine.NewLedger(1000)
			reg := engine.NewRegistry(ledger, &recordingSizer{})

			c, err := reg.Open(tt.direction, tt.entry, start, 10, 0.95, time.Minute)
			require.NoError(t, err)

			settled := reg.SettleExpired(start.Add(time.Minute), tt.exit)
			require.Len(t, settled, 1)
			assert.Same(t, c, settled[0])
			assert.Equal(t, tt.want, c.Status)
			assert.Equal(t, tt.exit, c.ExitPrice)

			if tt.want == engine.StatusWon {
				assert.InDelta(t, 9.5, c.Profit, 1e-9)
			} else {
				assert.Equal(t, -10.0, c.Profit)
			}
			assert.InDelta(t, 1000+c.Profit, ledger.Cash(), 1e-9)
		})
	}
}

func TestRegistry_SettleExpired_OnlyDue(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	reg := engine.NewRegistry(engine.NewLedger(1000), &recordingSizer{})

	_, err := reg.Open(core.DirectionCall, 100, start, 10, 0.95, time.Minute)
	require.NoError(t, err)
	later, err := reg.Open(core.DirectionCall, 100, start, 10, 0.95, 5*time.Minute)
	require.NoError(t, err)

	settled := reg.SettleExpired(start.Add(time.Minute), 101)
	assert.Len(t, settled, 1)
	assert.Equal(t, 1, reg.OpenCount())
	assert.Equal(t, engine.StatusOpen, later.Status)
}

func TestRegistry_SettleExpired_ExactlyOnce(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	ledger := engine.NewLedger(1000)
	sizer := &recordingSizer{}
	reg := engine.NewRegistry(ledger, sizer)

	_, err := reg.Open(core.DirectionCall, 100, start, 10, 0.95, time.Minute)
	require.NoError(t, err)

	first := reg.SettleExpired(start.Add(time.Minute), 101)
	require.Len(t, first, 1)

	// The contract left the open set on first settlement; a second pass
	// over the same time cannot touch it again.
	second := reg.SettleExpired(start.Add(time.Minute), 50)
	assert.Empty(t, second)
	assert.Len(t, sizer.updates, 1)
	assert.InDelta(t, 1009.5, ledger.Cash(), 1e-9)
}

func TestRegistry_SettleExpired_InsertionOrder(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	sizer := &recordingSizer{}
	reg := engine.NewRegistry(engine.NewLedger(1000), sizer)

	// Three contracts expiring on the same tick.
	first, _ := reg.Open(core.DirectionCall, 100, start, 10, 0.95, time.Minute)
	second, _ := reg.Open(core.DirectionPut, 100, start.Add(time.Second), 20, 0.95, 59*time.Second)
	third, _ := reg.Open(core.DirectionCall, 100, start.Add(2*time.Second), 30, 0.95, 58*time.Second)

	settled := reg.SettleExpired(start.Add(time.Minute), 101)
	require.Len(t, settled, 3)
	assert.Equal(t, []int64{first.ID, second.ID, third.ID},
		[]int64{settled[0].ID, settled[1].ID, settled[2].ID})

	// Sizer updates arrive in the same order.
	require.Len(t, sizer.updates, 3)
	assert.Equal(t, 10.0, sizer.updates[0].stake)
	assert.Equal(t, 20.0, sizer.updates[1].stake)
	assert.Equal(t, 30.0, sizer.updates[2].stake)
}

func TestRegistry_IDsMonotonic(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	reg := engine.NewRegistry(engine.NewLedger(1000), &recordingSizer{})

	var last int64
	for i := 0; i < 5; i++ {
		c, err := reg.Open(core.DirectionCall, 100, start, 10, 0.95, time.Minute)
		require.NoError(t, err)
		assert.Greater(t, c.ID, last)
		last = c.ID
	}
}

func TestRegistry_LedgerConservation(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	ledger := engine.NewLedger(1000)
	reg := engine.NewRegistry(ledger, &recordingSizer{})

	prices := []float64{101, 99, 100, 102, 98}
	for i, exit := range prices {
		entryTime := start.Add(time.Duration(i) * time.Minute)
		dir := core.DirectionCall
		if i%2 == 1 {
			dir = core.DirectionPut
		}
		_, err := reg.Open(dir, 100, entryTime, 10, 0.95, time.Minute)
		require.NoError(t, err)
		reg.SettleExpired(entryTime.Add(time.Minute), exit)
	}

	var sum float64
	for _, c := range reg.Settled() {
		sum += c.Profit
	}
	assert.InDelta(t, sum, ledger.NetProfit(), 1e-9,
		"net ledger change must equal the sum of settled profits")
}
