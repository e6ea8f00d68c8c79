package market

import (
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// schedule describes one exchange's regular session in its local zone.
type schedule struct {
	location    string
	openMinutes int // minutes from midnight
	closeMinutes int
}

var (
	krxSchedule = schedule{location: "Asia/Seoul", openMinutes: 9 * 60, closeMinutes: 15*60 + 30}
	usSchedule  = schedule{location: "America/New_York", openMinutes: 9*60 + 30, closeMinutes: 16 * 60}
)

// Status returns the trading session state of a market at the given
// instant. Holidays are not modeled; weekends are.
func Status(m stock.Market, now time.Time) stock.MarketStatus {
	sched := usSchedule
	if m == stock.MarketKRX {
		sched = krxSchedule
	}

	loc, err := time.LoadLocation(sched.location)
	if err != nil {
		return stock.StatusClosed
	}
	local := now.In(loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return stock.StatusClosed
	}

	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < sched.openMinutes:
		return stock.StatusPreMarket
	case minutes >= sched.closeMinutes:
		return stock.StatusAfterHours
	default:
		return stock.StatusOpen
	}
}

// CurrentStatus is Status at time.Now().
func CurrentStatus(m stock.Market) stock.MarketStatus {
	return Status(m, time.Now())
}
