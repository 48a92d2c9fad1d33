package numeric

import "errors"

// ErrInvalidBook is returned when a spread cannot be derived from the
// given top-of-book quotes.
var ErrInvalidBook = errors.New("invalid top-of-book quotes")

// SpreadBps converts a best bid/ask pair into a basis-point spread over the
// mid price. Returns ErrInvalidBook when either side is non-positive or the
// book is crossed past zero mid.
func SpreadBps(bid, ask float64) (float64, error) {
	if bid <= 0 || ask <= 0 {
		return 0, ErrInvalidBook
	}
	mid := (bid + ask) / 2
	if mid <= 0 {
		return 0, ErrInvalidBook
	}
	return (ask - bid) / mid * 10000, nil
}

// MidPrice returns the midpoint of a bid/ask pair, or ErrInvalidBook when
// either side is non-positive.
func MidPrice(bid, ask float64) (float64, error) {
	if bid <= 0 || ask <= 0 {
		return 0, ErrInvalidBook
	}
	return (bid + ask) / 2, nil
}
