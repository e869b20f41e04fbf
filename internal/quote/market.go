package quote

// Market is a read-only calendar/identity record sourced from the catalog.
type Market struct {
	ID      int64
	ShortName string
	PubName   string // optional; empty means "not set"

	OpenTime  string // "HH:MM" or "HH:MM:SS"; empty means "not set"
	CloseTime string

	OpensFrom *int // weekday index 0=Sunday..6=Saturday; nil means "not set"
	OpensTill *int

	PreMarketOffset  *uint // hours; nil means "not set" (treated as 0)
	PostMarketOffset *uint

	// TimeZoneOffset is read from the catalog but not consulted during
	// rule construction — see SPEC_FULL.md §9.1 Open Questions.
	TimeZoneOffset *int
}

// EffectiveName returns PubName if set, otherwise ShortName. This is the
// market name used for Ticker.Market; ShortName alone is used to look up
// the adapter in the RustlerJar.
func (m Market) EffectiveName() string {
	if m.PubName != "" {
		return m.PubName
	}
	return m.ShortName
}
