package classify

// Period is one opening interval of a venue. A nil Close marks an always-open
// venue, which counts as closing late.
type Period struct {
	OpenDay   int    // 0 = Sunday .. 6 = Saturday
	OpenTime  string // 24h "HHMM"
	CloseDay  int
	CloseTime string
	HasClose  bool
}

const (
	fridayDay   = 5
	saturdayDay = 6

	lateCloseTime   = "2300"
	eveningOpenTime = "1800"
)

// closesLateOnWeekend reports whether any Friday/Saturday period closes at or
// after 23:00 local, rolls past midnight, or never closes.
func closesLateOnWeekend(periods []Period) bool {
	for _, p := range periods {
		if !p.HasClose {
			return true
		}
		if p.OpenDay != fridayDay && p.OpenDay != saturdayDay {
			continue
		}
		if p.CloseDay != p.OpenDay {
			return true
		}
		if len(p.CloseTime) == 4 && p.CloseTime >= lateCloseTime {
			return true
		}
	}
	return false
}

// opensInEvening reports whether the venue opens at or after 18:00 on any day.
func opensInEvening(periods []Period) bool {
	for _, p := range periods {
		if len(p.OpenTime) == 4 && p.OpenTime >= eveningOpenTime {
			return true
		}
	}
	return false
}
