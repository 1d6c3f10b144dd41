package parser

import "time"

// DateCategory labels a group of items by relative recency.
type DateCategory string

const (
	DateToday     DateCategory = "Today"
	DateYesterday DateCategory = "Yesterday"
	DateThisWeek  DateCategory = "This Week"
	DateThisMonth DateCategory = "This Month"
	DateOlder     DateCategory = "Older"
	DateUnknown   DateCategory = "Undated"
)

// DateGroup holds a category label and the indices of its items.
type DateGroup struct {
	Category DateCategory
	Indices  []int
}

// categoryOrder is the display order of groups.
var categoryOrder = []DateCategory{DateToday, DateYesterday, DateThisWeek, DateThisMonth, DateOlder, DateUnknown}

// CategorizeDate buckets t relative to now, in now's location.
func CategorizeDate(t, now time.Time) DateCategory {
	if t.IsZero() {
		return DateUnknown
	}
	loc := now.Location()
	t = t.In(loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch {
	case !t.Before(todayStart):
		return DateToday
	case !t.Before(todayStart.AddDate(0, 0, -1)):
		return DateYesterday
	case !t.Before(todayStart.AddDate(0, 0, -7)):
		return DateThisWeek
	case !t.Before(todayStart.AddDate(0, 0, -30)):
		return DateThisMonth
	default:
		return DateOlder
	}
}

// GroupByDate buckets items (given by their timestamps) into date
// categories. Only non-empty groups are returned, in display order; items
// keep their input order within a group.
func GroupByDate(times []time.Time, now time.Time) []DateGroup {
	buckets := make(map[DateCategory][]int, len(categoryOrder))
	for i, t := range times {
		cat := CategorizeDate(t, now)
		buckets[cat] = append(buckets[cat], i)
	}

	var groups []DateGroup
	for _, cat := range categoryOrder {
		if idx := buckets[cat]; len(idx) > 0 {
			groups = append(groups, DateGroup{Category: cat, Indices: idx})
		}
	}
	return groups
}
