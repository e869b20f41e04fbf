package rustler

// Opts configures a rustler's connection behavior.
type Opts struct {
	// ConnectOnStart connects the rustler as part of Start, unless it's
	// already connected or connecting.
	ConnectOnStart bool
	// ConnectOnAdd connects the rustler as part of Add, unless it's
	// already connected or connecting.
	ConnectOnAdd bool
}

// DefaultOpts returns the default options: connect eagerly on both Start
// and Add.
func DefaultOpts() Opts {
	return Opts{ConnectOnStart: true, ConnectOnAdd: true}
}
