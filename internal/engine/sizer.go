package engine

import (
	"fmt"
	"math"
)

// Sizer computes the stake for the next contract and tracks progression
// state across settlements. NextStake is called once per contract open;
// Update is called exactly once per settlement, in settlement order.
type Sizer interface {
	NextStake(cash float64, strength int) float64
	Update(won bool, profit, stake float64)
}

// roundStake rounds to the ledger's currency precision of 2 decimal
// places, half away from zero. The policy is fixed so that runs over the
// same data are byte-identical.
func roundStake(stake float64) float64 {
	return math.Round(stake*100) / 100
}

// ProgressiveConfig parameterizes the progressive anti-martingale sizer.
// All percentages are fractions of the current cash.
type ProgressiveConfig struct {
	BaseStakePct     float64
	MinStakePct      float64
	MaxStakePct      float64
	MaxWinStreak     int
	MaxLossStreak    int
	StrengthBonusPct float64
	BaselineStrength int
}

// Validate rejects configurations that would make the progression
// degenerate.
func (c ProgressiveConfig) Validate() error {
	if c.BaseStakePct <= 0 {
		return fmt.Errorf("base_stake_pct must be positive, got %f", c.BaseStakePct)
	}
	if c.MinStakePct < 0 {
		return fmt.Errorf("min_stake_pct must not be negative, got %f", c.MinStakePct)
	}
	if c.MinStakePct > c.MaxStakePct {
		return fmt.Errorf("min_stake_pct %f exceeds max_stake_pct %f", c.MinStakePct, c.MaxStakePct)
	}
	if c.MaxWinStreak <= 0 {
		return fmt.Errorf("max_win_streak must be positive, got %d", c.MaxWinStreak)
	}
	if c.MaxLossStreak <= 0 {
		return fmt.Errorf("max_loss_streak must be positive, got %d", c.MaxLossStreak)
	}
	if c.StrengthBonusPct < 0 {
		return fmt.Errorf("strength_bonus_pct must not be negative, got %f", c.StrengthBonusPct)
	}
	if c.BaselineStrength < 1 {
		return fmt.Errorf("baseline_strength must be at least 1, got %d", c.BaselineStrength)
	}
	return nil
}

// ProgressiveSizer implements the progressive-cycles anti-martingale:
// winners compound additively (next stake = stake + profit), losers
// decay geometrically (next stake = stake / 2), and either cycle resets
// to the base stake after a bounded streak. The asymmetry bounds the
// maximum exposure without a hard multiplier cap.
type ProgressiveSizer struct {
	cfg ProgressiveConfig

	currentStake float64
	stakeSet     bool
	winStreak    int
	lossStreak   int
}

// NewProgressiveSizer validates the config and returns a fresh sizer
// with both streaks at zero and the stake unset.
func NewProgressiveSizer(cfg ProgressiveConfig) (*ProgressiveSizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ProgressiveSizer{cfg: cfg}, nil
}

// NextStake computes the stake for the next contract: the carried
// progression stake (or cash*BaseStakePct when unset), scaled by the
// strength bonus and clamped to [cash*MinStakePct, cash*MaxStakePct].
func (s *ProgressiveSizer) NextStake(cash float64, strength int) float64 {
	stake := cash * s.cfg.BaseStakePct
	if s.stakeSet {
		stake = s.currentStake
	}

	if extra := strength - s.cfg.BaselineStrength; extra > 0 {
		stake *= 1 + float64(extra)*s.cfg.StrengthBonusPct
	}

	minStake := cash * s.cfg.MinStakePct
	maxStake := cash * s.cfg.MaxStakePct
	if stake < minStake {
		stake = minStake
	}
	if stake > maxStake {
		stake = maxStake
	}

	return roundStake(stake)
}

// Update progresses the streak state after a settlement.
//
// Win:  next stake = stake + profit; after MaxWinStreak wins the cycle
// resets and the next stake recomputes from base.
// Loss: next stake = stake / 2, unconditionally; after MaxLossStreak
// losses the cycle resets.
func (s *ProgressiveSizer) Update(won bool, profit, stake float64) {
	if won {
		s.winStreak++
		s.lossStreak = 0
		s.currentStake = stake + profit
		s.stakeSet = true

		if s.winStreak >= s.cfg.MaxWinStreak {
			s.winStreak = 0
			s.stakeSet = false
		}
		return
	}

	s.lossStreak++
	s.winStreak = 0
	s.currentStake = stake / 2
	s.stakeSet = true

	if s.lossStreak >= s.cfg.MaxLossStreak {
		s.lossStreak = 0
		s.stakeSet = false
	}
}

// Streaks returns the current win and loss streaks. At most one of the
// two is ever non-zero.
func (s *ProgressiveSizer) Streaks() (wins, losses int) {
	return s.winStreak, s.lossStreak
}

// FixedSizer stakes a constant amount on every contract, capped at the
// available cash.
type FixedSizer struct {
	Stake float64
}

// NewFixedSizer creates a fixed-amount sizer.
func NewFixedSizer(stake float64) (*FixedSizer, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive, got %f", stake)
	}
	return &FixedSizer{Stake: stake}, nil
}

func (s *FixedSizer) NextStake(cash float64, strength int) float64 {
	return roundStake(math.Min(s.Stake, cash))
}

func (s *FixedSizer) Update(won bool, profit, stake float64) {}

// MartingaleSizer multiplies the stake after every loss and resets to
// base on a win. The multiplier is capped at factor^maxSteps to bound
// exposure during long losing streaks.
type MartingaleSizer struct {
	base     float64
	factor   float64
	maxSteps int

	multiplier float64
}

// NewMartingaleSizer creates a loss-progression sizer.
func NewMartingaleSizer(base, factor float64, maxSteps int) (*MartingaleSizer, error) {
	if base <= 0 {
		return nil, fmt.Errorf("base stake must be positive, got %f", base)
	}
	if factor <= 1 {
		return nil, fmt.Errorf("factor must exceed 1, got %f", factor)
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be positive, got %d", maxSteps)
	}
	return &MartingaleSizer{base: base, factor: factor, maxSteps: maxSteps, multiplier: 1}, nil
}

func (s *MartingaleSizer) NextStake(cash float64, strength int) float64 {
	return roundStake(math.Min(s.base*s.multiplier, cash))
}

func (s *MartingaleSizer) Update(won bool, profit, stake float64) {
	if won {
		s.multiplier = 1
		return
	}
	s.multiplier *= s.factor
	if limit := math.Pow(s.factor, float64(s.maxSteps)); s.multiplier > limit {
		s.multiplier = limit
	}
}

// CompoundSizer is the multiplier-based anti-martingale: the stake is
// multiplied after every win and resets to base on a loss, capped at
// factor^maxSteps.
type CompoundSizer struct {
	base     float64
	factor   float64
	maxSteps int

	multiplier float64
}

// NewCompoundSizer creates a win-progression sizer.
func NewCompoundSizer(base, factor float64, maxSteps int) (*CompoundSizer, error) {
	if base <= 0 {
		return nil, fmt.Errorf("base stake must be positive, got %f", base)
	}
	if factor <= 1 {
		return nil, fmt.Errorf("factor must exceed 1, got %f", factor)
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be positive, got %d", maxSteps)
	}
	return &CompoundSizer{base: base, factor: factor, maxSteps: maxSteps, multiplier: 1}, nil
}

func (s *CompoundSizer) NextStake(cash float64, strength int) float64 {
	return roundStake(math.Min(s.base*s.multiplier, cash))
}

func (s *CompoundSizer) Update(won bool, profit, stake float64) {
	if !won {
		s.multiplier = 1
		return
	}
	s.multiplier *= s.factor
	if limit := math.Pow(s.factor, float64(s.maxSteps)); s.multiplier > limit {
		s.multiplier = limit
	}
}
