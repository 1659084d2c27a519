package example

//go:generate swaplock-gen -input example_types.go

// QuoteBoard is a snapshot of the best bids and asks per symbol. Readers take
// it wholesale on the hot path; a single feed goroutine applies updates.
//
// swaplock:wrap
type QuoteBoard struct {
	Bids map[string]float64
	Asks map[string]float64
	Seq  uint64
}

// CloneQuoteBoard produces the second table copy for the pair constructors.
func CloneQuoteBoard(b QuoteBoard) QuoteBoard {
	out := QuoteBoard{
		Bids: make(map[string]float64, len(b.Bids)),
		Asks: make(map[string]float64, len(b.Asks)),
		Seq:  b.Seq,
	}
	for k, v := range b.Bids {
		out.Bids[k] = v
	}
	for k, v := range b.Asks {
		out.Asks[k] = v
	}
	return out
}
