package analyzer

// PaymentStatus is the status code reported for one period of payment history
type PaymentStatus rune

// Late reports whether the period carries a late-payment marker (codes 1 to 5)
func (s PaymentStatus) Late() bool {
	return s >= '1' && s <= '5'
}

// PaymentHistory is a parsed payment-history string, most recent period first
type PaymentHistory struct {
	periods []PaymentStatus
}

// ParsePaymentHistory splits a history string into per-period status codes.
// Each character is one period; the string is read most recent first.
func ParsePaymentHistory(history string) PaymentHistory {
	periods := make([]PaymentStatus, 0, len(history))
	for _, r := range history {
		periods = append(periods, PaymentStatus(r))
	}
	return PaymentHistory{periods: periods}
}

// Len returns the number of periods
func (h PaymentHistory) Len() int {
	return len(h.periods)
}

// At returns the status n periods ago
func (h PaymentHistory) At(n int) PaymentStatus {
	return h.periods[n]
}

// HasLate reports whether any period is late
func (h PaymentHistory) HasLate() bool {
	_, ok := h.MostRecentLate()
	return ok
}

// MostRecentLate returns the index of the most recent late period, which
// approximates the number of months since that late payment
func (h PaymentHistory) MostRecentLate() (int, bool) {
	for i, s := range h.periods {
		if s.Late() {
			return i, true
		}
	}
	return 0, false
}

// LateCount returns the number of late periods
func (h PaymentHistory) LateCount() int {
	n := 0
	for _, s := range h.periods {
		if s.Late() {
			n++
		}
	}
	return n
}
