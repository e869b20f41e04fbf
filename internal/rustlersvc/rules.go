package rustlersvc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/scheduler"
)

// ScheduleRules pairs the start-of-session and end-of-session recurrence
// rules derived from a market's trading calendar.
type ScheduleRules struct {
	Start scheduler.Rule
	Stop  scheduler.Rule
}

// GetScheduleRulesFor derives start/stop recurrence rules from a market's
// calendar fields. It returns (nil, nil) when the market carries no open
// or close time — such a market has no schedule and its rustler is
// expected to run continuously.
func GetScheduleRulesFor(mkt quote.Market) (*ScheduleRules, error) {
	if mkt.OpenTime == "" || mkt.CloseTime == "" {
		return nil, nil
	}

	openH, openM, openS, err := parseTimeOfDay(mkt.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("rustlersvc: parsing open_time for %q: %w", mkt.ShortName, err)
	}

	closeH, closeM, closeS, err := parseTimeOfDay(mkt.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("rustlersvc: parsing close_time for %q: %w", mkt.ShortName, err)
	}

	var preOffset, postOffset uint
	if mkt.PreMarketOffset != nil {
		preOffset = *mkt.PreMarketOffset
	}
	if mkt.PostMarketOffset != nil {
		postOffset = *mkt.PostMarketOffset
	}

	fromDOW, tillDOW := scheduler.FromToDOW(mkt.OpensFrom, mkt.OpensTill)

	start := makeRule(fromDOW, tillDOW, openH, openM, openS, preOffset, scheduler.OpSub)
	stop := makeRule(fromDOW, tillDOW, closeH, closeM, closeS, postOffset, scheduler.OpAdd)

	return &ScheduleRules{Start: start, Stop: stop}, nil
}

// makeRule builds a recurrence rule for a time-of-day shifted by a
// saturating hour offset in the given direction.
func makeRule(fromDOW, tillDOW time.Weekday, h, m, s int, offset uint, op scheduler.Op) scheduler.Rule {
	return scheduler.Rule{
		FromDOW: fromDOW,
		TillDOW: tillDOW,
		Hour:    scheduler.SaturatingHourOffset(h, offset, op),
		Minute:  m,
		Second:  s,
	}
}

// ShouldBeRunningNow decides whether a rustler should be actively
// gathering data right now, given its (possibly absent) schedule. A
// market with no schedule rules is always considered running. Otherwise
// the rustler is running when the next stop fires before the next start
// and the stop hasn't passed yet, or when there's a start with no
// reachable stop at all.
func ShouldBeRunningNow(rules *ScheduleRules) bool {
	if rules == nil {
		return true
	}

	now := time.Now()
	startDate := rules.Start.NextFrom(now)
	stopDate := rules.Stop.NextFrom(now)

	if startDate != nil && stopDate == nil {
		return true
	}

	if startDate != nil && stopDate != nil {
		return stopDate.Before(*startDate) && now.Before(*stopDate)
	}

	return false
}

// parseTimeOfDay parses "HH:MM" or "HH:MM:SS" into hour, minute, second.
func parseTimeOfDay(s string) (hour, minute, second int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("expected HH:MM or HH:MM:SS, got %q", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid second in %q: %w", s, err)
		}
	}

	return hour, minute, second, nil
}
