package stats

import (
	"math"
	"sort"
	"time"

	"github.com/smolci/StudyBuddy/backend/models"
)

// NoSubjectName is the display name for sessions without a resolvable subject.
const NoSubjectName = "—"

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayStat is one per-day accumulator of the weekly dashboard, Monday first.
type DayStat struct {
	DayName string `json:"dayName"`
	Minutes int    `json:"minutes"`
}

// WeeklyStats is the weekly dashboard view model. It is recomputed on every
// request and never persisted.
type WeeklyStats struct {
	TotalWeekMinutes          int       `json:"totalWeekMinutes"`
	WeekChangePercent         float64   `json:"weekChangePercent"`
	Days                      []DayStat `json:"days"`
	MostStudiedSubjectName    string    `json:"mostStudiedSubjectName"`
	MostStudiedSubjectMinutes int       `json:"mostStudiedSubjectMinutes"`
	BestDayName               string    `json:"bestDayName"`
	BestDayMinutes            int       `json:"bestDayMinutes"`
	AverageSessionMinutes     int       `json:"averageSessionMinutes"`
}

// SessionSource fetches a user's study sessions whose start time falls in
// [startUTC, endUTC) and whose duration is positive.
type SessionSource interface {
	SessionsInRange(userID uint, startUTC, endUTC time.Time) ([]models.StudySession, error)
}

// Aggregator computes the weekly statistics dashboard from a read-only
// session source. Location is the single app-wide bucketing timezone.
type Aggregator struct {
	Sessions SessionSource
	Location *time.Location
}

func NewAggregator(src SessionSource, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{Sessions: src, Location: loc}
}

// WeekBounds returns the Monday 00:00 boundary of the week containing ref in
// the given timezone, and the following Monday 00:00 (exclusive).
func WeekBounds(ref time.Time, loc *time.Location) (start, end time.Time) {
	local := ref.In(loc)
	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(local.Weekday()) + 6) % 7
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 7)
	return start, end
}

// WeekBuckets accumulates session minutes into seven Monday-first buckets by
// the local weekday of each session's start time. Negative durations are
// clamped to zero.
func WeekBuckets(sessions []models.StudySession, loc *time.Location) [7]int {
	var buckets [7]int
	for _, s := range sessions {
		local := s.StartTime.In(loc)
		idx := (int(local.Weekday()) + 6) % 7
		if s.DurationMinutes > 0 {
			buckets[idx] += s.DurationMinutes
		}
	}
	return buckets
}

// ComputeWeeklyStats builds the dashboard for the week containing ref.
// Missing data yields zero totals and the "—" placeholder; it never errors on
// empty weeks.
func (a *Aggregator) ComputeWeeklyStats(userID uint, ref time.Time) (WeeklyStats, error) {
	weekStart, weekEnd := WeekBounds(ref, a.Location)
	startUTC := weekStart.UTC()
	endUTC := weekEnd.UTC()

	sessions, err := a.Sessions.SessionsInRange(userID, startUTC, endUTC)
	if err != nil {
		return WeeklyStats{}, err
	}

	prevSessions, err := a.Sessions.SessionsInRange(userID, startUTC.AddDate(0, 0, -7), startUTC)
	if err != nil {
		return WeeklyStats{}, err
	}

	buckets := WeekBuckets(sessions, a.Location)

	out := WeeklyStats{
		Days:                   make([]DayStat, 7),
		MostStudiedSubjectName: NoSubjectName,
		BestDayName:            NoSubjectName,
	}

	total := 0
	for i, minutes := range buckets {
		out.Days[i] = DayStat{DayName: dayNames[i], Minutes: minutes}
		total += minutes
	}
	out.TotalWeekMinutes = total

	// Stable max scan: the first maximal bucket in Mon..Sun order wins ties.
	// An all-zero week keeps the "—" placeholder.
	if total > 0 {
		best := 0
		for i, minutes := range buckets {
			if minutes > buckets[best] {
				best = i
			}
		}
		out.BestDayName = dayNames[best]
		out.BestDayMinutes = buckets[best]
	}

	if len(sessions) > 0 {
		// Rounding policy: half away from zero.
		out.AverageSessionMinutes = int(math.Round(float64(total) / float64(len(sessions))))
	}

	out.MostStudiedSubjectName, out.MostStudiedSubjectMinutes = mostStudiedSubject(sessions)

	prevTotal := 0
	for _, minutes := range WeekBuckets(prevSessions, a.Location) {
		prevTotal += minutes
	}
	out.WeekChangePercent = weekChangePercent(prevTotal, total)

	return out, nil
}

// mostStudiedSubject groups this week's minutes by subject and returns the
// biggest group. Sessions without a subject form their own "—" group. Groups
// are sorted by name first so equal-minute ties resolve lexicographically.
func mostStudiedSubject(sessions []models.StudySession) (string, int) {
	type group struct {
		name    string
		minutes int
	}

	byID := make(map[uint]*group)
	order := make([]*group, 0)
	for _, s := range sessions {
		minutes := s.DurationMinutes
		if minutes < 0 {
			minutes = 0
		}

		var id uint
		name := NoSubjectName
		if s.SubjectID != nil {
			id = *s.SubjectID
			if s.Subject != nil {
				name = s.Subject.Name
			}
		}

		g, ok := byID[id]
		if !ok {
			g = &group{name: name}
			byID[id] = g
			order = append(order, g)
		}
		g.minutes += minutes
	}

	if len(order) == 0 {
		return NoSubjectName, 0
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].name < order[j].name })

	top := order[0]
	for _, g := range order[1:] {
		if g.minutes > top.minutes {
			top = g
		}
	}
	return top.name, top.minutes
}

// weekChangePercent special-cases a zero previous week so we never divide by
// zero: any activity after an empty week reads as +100%.
func weekChangePercent(previous, current int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
