package engine

// Ledger holds the account cash for a single backtest run. It is mutated
// only by contract settlement, so the net profit of all settled
// contracts always equals Cash() - Initial().
type Ledger struct {
	initial float64
	cash    float64
}

// NewLedger creates a ledger starting at initialCash.
func NewLedger(initialCash float64) *Ledger {
	return &Ledger{initial: initialCash, cash: initialCash}
}

// Apply adds a settlement profit (negative for losses) to the cash.
func (l *Ledger) Apply(profit float64) {
	l.cash += profit
}

// Cash returns the current balance.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// Initial returns the starting balance.
func (l *Ledger) Initial() float64 {
	return l.initial
}

// NetProfit returns the cash change since the start of the run.
func (l *Ledger) NetProfit() float64 {
	return l.cash - l.initial
}
