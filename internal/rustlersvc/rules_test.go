package rustlersvc_test

import (
	"testing"
	"time"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/rustlersvc"
	"github.com/corraldata/rustlers/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintp(v uint) *uint { return &v }

func TestGetScheduleRulesForMissingTimesReturnsNil(t *testing.T) {
	rules, err := rustlersvc.GetScheduleRulesFor(quote.Market{ShortName: "NOSCHED"})
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestGetScheduleRulesForAppliesPrePostOffsets(t *testing.T) {
	mkt := quote.Market{
		ShortName:        "NASDAQ",
		OpenTime:         "09:30",
		CloseTime:        "16:00",
		PreMarketOffset:  uintp(1),
		PostMarketOffset: uintp(1),
	}

	rules, err := rustlersvc.GetScheduleRulesFor(mkt)
	require.NoError(t, err)
	require.NotNil(t, rules)

	assert.Equal(t, 8, rules.Start.Hour)
	assert.Equal(t, 30, rules.Start.Minute)
	assert.Equal(t, 17, rules.Stop.Hour)
	assert.Equal(t, 0, rules.Stop.Minute)
}

func TestGetScheduleRulesForDefaultsWeekdayWindowToSunday(t *testing.T) {
	mkt := quote.Market{ShortName: "X", OpenTime: "09:00", CloseTime: "17:00"}

	rules, err := rustlersvc.GetScheduleRulesFor(mkt)
	require.NoError(t, err)
	require.NotNil(t, rules)

	assert.Equal(t, time.Sunday, rules.Start.FromDOW)
	assert.Equal(t, time.Sunday, rules.Start.TillDOW)
}

func TestGetScheduleRulesForRejectsUnparseableTime(t *testing.T) {
	_, err := rustlersvc.GetScheduleRulesFor(quote.Market{OpenTime: "bad", CloseTime: "16:00"})
	assert.Error(t, err)
}

func TestShouldBeRunningNowWithNoRules(t *testing.T) {
	assert.True(t, rustlersvc.ShouldBeRunningNow(nil))
}

// allDayRule fires every day of the week at the given hour/minute/second,
// so only the hour-of-day distinguishes "next fire" candidates in a test.
func allDayRule(hour, minute, second int) scheduler.Rule {
	return scheduler.Rule{FromDOW: time.Sunday, TillDOW: time.Saturday, Hour: hour, Minute: minute, Second: second}
}

func TestShouldBeRunningNowInsideWindow(t *testing.T) {
	now := time.Now()
	if now.Hour() == 0 {
		t.Skip("flaky at the midnight boundary")
	}

	// Start's hour already passed today, so its next occurrence wraps to
	// tomorrow; Stop's hour is still ahead today. That's exactly the
	// "currently inside the trading window" shape.
	rules := &rustlersvc.ScheduleRules{
		Start: allDayRule(now.Hour()-1, now.Minute(), now.Second()),
		Stop:  allDayRule(now.Hour(), now.Minute()+1, now.Second()),
	}
	assert.True(t, rustlersvc.ShouldBeRunningNow(rules))
}

func TestShouldBeRunningNowOutsideWindow(t *testing.T) {
	now := time.Now()
	if now.Hour() == 23 {
		t.Skip("flaky at the day boundary")
	}

	// Both start and stop are still ahead today, with start before stop —
	// trading hasn't opened yet.
	rules := &rustlersvc.ScheduleRules{
		Start: allDayRule(now.Hour()+1, now.Minute(), now.Second()),
		Stop:  allDayRule(now.Hour()+1, now.Minute()+1, now.Second()),
	}
	assert.False(t, rustlersvc.ShouldBeRunningNow(rules))
}
