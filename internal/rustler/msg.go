package rustler

import "github.com/corraldata/rustlers/internal/quote"

// Msg is sent from a running rustler back to the supervising service over
// its message sender channel.
type Msg struct {
	Quote quote.Quote
}
