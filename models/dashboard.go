package models

// DashboardSummary is the headline block of the dashboard.
type DashboardSummary struct {
	TotalVisitors     int    `json:"totalVisitors"`
	TotalPageViews    int    `json:"totalPageViews"`
	AvgSessionMinutes string `json:"avgSessionMinutes"`
	MobilePercent     string `json:"mobilePercent"`
}

type DailyVisitors struct {
	Date     string `json:"date"`
	Visitors int    `json:"visitors"`
}

type TopPage struct {
	Page       string `json:"page"`
	Views      int    `json:"views"`
	AvgTime    string `json:"avgTime"`
	BounceRate string `json:"bounceRate"`
}

// CountryVisitors is placeholder geography; no geolocation is performed.
type CountryVisitors struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Visitors int    `json:"visitors"`
	Flag     string `json:"flag"`
}

type BrowserShare struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

type MusicPlay struct {
	Track string `json:"track"`
	Plays int    `json:"plays"`
}

// Dashboard is the response of GET /api/analytics.php?range=...
type Dashboard struct {
	Summary          DashboardSummary  `json:"summary"`
	VisitorsOverTime []DailyVisitors   `json:"visitorsOverTime"`
	TopPages         []TopPage         `json:"topPages"`
	TopCountries     []CountryVisitors `json:"topCountries"`
	Browsers         []BrowserShare    `json:"browsers"`
	MusicPlays       []MusicPlay       `json:"musicPlays"`
	TotalVisits      int64             `json:"totalVisits"`
	Status           string            `json:"status"`
}

// VisitCounter is the response of GET /api/analytics.php?counter=1
type VisitCounter struct {
	Visits    int64  `json:"visits"`
	Formatted string `json:"formatted"`
}
