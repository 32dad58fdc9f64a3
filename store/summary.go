package store

import (
	"fmt"
	"math"
	"sort"
	"time"

	"portfolio/devserver/models"
	"portfolio/devserver/utils"
)

const topPagesLimit = 10

// Fixed dashboard values. The dev server has no session tracking or
// geolocation, so these are placeholders rather than measurements.
const (
	placeholderSessionMinutes = "2.8"
	placeholderAvgTime        = "2:30"
	placeholderBounceRate     = "35%"
	dashboardStatus           = "real_data"
)

// BuildDashboard aggregates the page views of doc that fall within the
// trailing window named by rangeName, as seen at now.
func BuildDashboard(doc *models.AnalyticsDocument, rangeName string, now time.Time) *models.Dashboard {
	if rangeName == "" {
		rangeName = utils.DefaultRange
	}
	days := utils.ResolveRangeDays(rangeName)
	recent := recentPageViews(doc.Events, days, now)

	visitors := make(map[string]struct{}, len(recent))
	mobile := 0
	for _, e := range recent {
		visitors[e.VisitorHash] = struct{}{}
		if e.IsMobile {
			mobile++
		}
	}
	unique := len(visitors)

	return &models.Dashboard{
		Summary: models.DashboardSummary{
			TotalVisitors:     unique,
			TotalPageViews:    len(recent),
			AvgSessionMinutes: placeholderSessionMinutes,
			MobilePercent:     mobilePercent(mobile, len(recent)),
		},
		VisitorsOverTime: dailyVisitors(recent, days, now),
		TopPages:         topPages(recent),
		TopCountries:     placeholderCountries(unique),
		Browsers:         placeholderBrowsers(),
		MusicPlays:       []models.MusicPlay{},
		TotalVisits:      doc.TotalVisits,
		Status:           dashboardStatus,
	}
}

// recentPageViews keeps page views strictly younger than the window.
func recentPageViews(events []models.Event, days int, now time.Time) []models.Event {
	windowMs := int64(days) * int64(24*time.Hour/time.Millisecond)
	nowMs := now.UnixMilli()

	var out []models.Event
	for _, e := range events {
		if !e.IsPageView() {
			continue
		}
		if nowMs-e.Timestamp < windowMs {
			out = append(out, e)
		}
	}
	return out
}

func mobilePercent(mobile, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(mobile)/float64(total)*100)
}

// dailyVisitors returns one entry per UTC day of the window, oldest first,
// counting distinct visitor hashes.
func dailyVisitors(recent []models.Event, days int, now time.Time) []models.DailyVisitors {
	byDate := make(map[string]map[string]struct{})
	for _, e := range recent {
		date := time.UnixMilli(e.Timestamp).UTC().Format(dateLayout)
		set, ok := byDate[date]
		if !ok {
			set = make(map[string]struct{})
			byDate[date] = set
		}
		set[e.VisitorHash] = struct{}{}
	}

	today := now.UTC()
	series := make([]models.DailyVisitors, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dateLayout)
		series = append(series, models.DailyVisitors{
			Date:     date,
			Visitors: len(byDate[date]),
		})
	}
	return series
}

// topPages ranks pages by views, highest first. Ties keep the order in which
// pages were first seen.
func topPages(recent []models.Event) []models.TopPage {
	views := make(map[string]int)
	var order []string
	for _, e := range recent {
		if e.Page == "" {
			continue
		}
		if _, seen := views[e.Page]; !seen {
			order = append(order, e.Page)
		}
		views[e.Page]++
	}

	pages := make([]models.TopPage, 0, len(order))
	for _, page := range order {
		pages = append(pages, models.TopPage{
			Page:       page,
			Views:      views[page],
			AvgTime:    placeholderAvgTime,
			BounceRate: placeholderBounceRate,
		})
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Views > pages[j].Views
	})

	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}
	return pages
}

func placeholderCountries(unique int) []models.CountryVisitors {
	share := func(ratio float64) int {
		return int(math.Floor(float64(unique) * ratio))
	}
	return []models.CountryVisitors{
		{Name: "Poland", Code: "PL", Visitors: share(0.6), Flag: "🇵🇱"},
		{Name: "United States", Code: "US", Visitors: share(0.2), Flag: "🇺🇸"},
		{Name: "Germany", Code: "DE", Visitors: share(0.1), Flag: "🇩🇪"},
		{Name: "Other", Code: "XX", Visitors: share(0.1), Flag: "🌍"},
	}
}

func placeholderBrowsers() []models.BrowserShare {
	return []models.BrowserShare{
		{Name: "Chrome", Percentage: 65},
		{Name: "Firefox", Percentage: 20},
		{Name: "Safari", Percentage: 10},
		{Name: "Other", Percentage: 5},
	}
}
