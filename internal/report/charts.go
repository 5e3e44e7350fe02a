package report

import (
	"sort"
	"strconv"

	"github.com/akraiem/attendance-tracker/internal/store"
)

// DayCount is the Present/Absent split of one calendar date.
type DayCount struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}

// NameCount pairs a label with a count, for bar charts.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Charts bundles the aggregations behind the dashboard.
type Charts struct {
	PerDay         []DayCount  `json:"per_day"`
	TopStudents    []NameCount `json:"top_students"`
	HourlyArrivals []NameCount `json:"hourly_arrivals"`
	BusiestDays    []NameCount `json:"busiest_days"`
}

// BuildCharts aggregates the records into chart series. topN bounds the
// ranked series; 0 means unbounded.
func BuildCharts(records []store.Record, topN int) Charts {
	perDay := map[string]*DayCount{}
	presentByStudent := map[string]int{}
	byHour := map[int]int{}

	for _, r := range records {
		dc := perDay[r.Date]
		if dc == nil {
			dc = &DayCount{Date: r.Date}
			perDay[r.Date] = dc
		}
		if r.Status == store.StatusPresent {
			dc.Present++
			presentByStudent[r.FullName]++
			if len(r.Time) >= 2 && r.Time != store.SentinelTime {
				if hour, err := strconv.Atoi(r.Time[:2]); err == nil && hour >= 0 && hour < 24 {
					byHour[hour]++
				}
			}
		} else {
			dc.Absent++
		}
	}

	var c Charts
	for _, dc := range perDay {
		c.PerDay = append(c.PerDay, *dc)
	}
	sort.Slice(c.PerDay, func(i, j int) bool { return c.PerDay[i].Date < c.PerDay[j].Date })

	for name, n := range presentByStudent {
		c.TopStudents = append(c.TopStudents, NameCount{Name: name, Count: n})
	}
	sortRanked(c.TopStudents)
	c.TopStudents = clip(c.TopStudents, topN)

	for hour, n := range byHour {
		c.HourlyArrivals = append(c.HourlyArrivals, NameCount{
			Name:  twoDigit(hour) + ":00",
			Count: n,
		})
	}
	sort.Slice(c.HourlyArrivals, func(i, j int) bool { return c.HourlyArrivals[i].Name < c.HourlyArrivals[j].Name })

	for _, dc := range c.PerDay {
		c.BusiestDays = append(c.BusiestDays, NameCount{Name: dc.Date, Count: dc.Present})
	}
	sortRanked(c.BusiestDays)
	c.BusiestDays = clip(c.BusiestDays, topN)

	return c
}

// sortRanked orders by count descending, name ascending for equal counts.
func sortRanked(s []NameCount) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Count != s[j].Count {
			return s[i].Count > s[j].Count
		}
		return s[i].Name < s[j].Name
	})
}

func clip(s []NameCount, n int) []NameCount {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
