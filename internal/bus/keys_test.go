package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsNamespacing(t *testing.T) {
	t.Run("defaults to the rustler prefix", func(t *testing.T) {
		o := newOptions()
		assert.Equal(t, "rustler:quote:BINANCE:BTCUSDT", o.namespaced("quote:BINANCE:BTCUSDT"))
	})

	t.Run("WithoutPrefix leaves the key untouched", func(t *testing.T) {
		o := newOptions(WithoutPrefix())
		assert.Equal(t, "quote:BINANCE:BTCUSDT", o.namespaced("quote:BINANCE:BTCUSDT"))
	})

	t.Run("prefix is prepended with a colon", func(t *testing.T) {
		o := newOptions(WithPrefix("staging"))
		assert.Equal(t, "staging:quote:BINANCE:BTCUSDT", o.namespaced("quote:BINANCE:BTCUSDT"))
	})

	t.Run("WithoutPrefix clears a previously set prefix", func(t *testing.T) {
		o := newOptions(WithPrefix("staging"), WithoutPrefix())
		assert.Equal(t, "quote:BTCUSDT", o.namespaced("quote:BTCUSDT"))
	})
}

func TestOptionsMatchPattern(t *testing.T) {
	t.Run("defaults to the rustler-namespaced wildcard pattern", func(t *testing.T) {
		o := newOptions()
		assert.Equal(t, "rustler:*", o.matchPattern())
	})

	t.Run("WithoutPrefix falls back to the bare wildcard pattern", func(t *testing.T) {
		o := newOptions(WithoutPrefix())
		assert.Equal(t, DefaultPattern, o.matchPattern())
	})

	t.Run("prefix scopes the pattern", func(t *testing.T) {
		o := newOptions(WithPrefix("staging"))
		assert.Equal(t, "staging:*", o.matchPattern())
	})

	t.Run("custom pattern combines with prefix", func(t *testing.T) {
		o := newOptions(WithPrefix("staging"), WithPattern("quote:BINANCE:*"))
		assert.Equal(t, "staging:quote:BINANCE:*", o.matchPattern())
	})
}
