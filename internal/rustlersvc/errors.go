package rustlersvc

import "errors"

var (
	// ErrNoMarkets is returned by Start when the catalog has nothing to
	// rustle quotes for.
	ErrNoMarkets = errors.New("rustlersvc: no markets found")
	// ErrRustlersStopped is returned by Start when the internal message
	// channel closes — this should only happen as part of a deliberate
	// shutdown.
	ErrRustlersStopped = errors.New("rustlersvc: rustlers stopped")
	// ErrRestartNotSupported is returned by every call to Restart.
	ErrRestartNotSupported = errors.New("rustlersvc: restart not supported yet")
)
