// devserver/models/event.go
package models

import (
	"encoding/json"
	"fmt"
)

// EventPageView is the event name that counts as a visit.
const EventPageView = "page_view"

// Event is one client-submitted analytics payload plus the fields the server
// stamps on it. Keys the server does not know about are kept in Extra and
// written back unchanged.
type Event struct {
	Event       string
	Page        string
	IsMobile    bool
	Browser     string
	SessionID   string
	Referrer    string
	Timestamp   int64 // ms since epoch
	VisitorHash string
	IPHash      string

	Extra map[string]json.RawMessage

	// sent records the known keys present in the decoded payload, so falsy
	// values the client sent survive a round trip.
	sent map[string]bool
}

// IsPageView reports whether the event counts towards visits.
func (e Event) IsPageView() bool {
	return e.Event == EventPageView
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("event payload must be a JSON object")
	}

	*e = Event{}
	e.Extra = make(map[string]json.RawMessage)
	e.sent = make(map[string]bool)

	for key, value := range raw {
		var ok bool
		// null is never decoded into a typed field.
		if string(value) == "null" {
			e.Extra[key] = value
			continue
		}
		switch key {
		case "event":
			ok = json.Unmarshal(value, &e.Event) == nil
		case "page":
			ok = json.Unmarshal(value, &e.Page) == nil
		case "is_mobile":
			ok = json.Unmarshal(value, &e.IsMobile) == nil
		case "browser":
			ok = json.Unmarshal(value, &e.Browser) == nil
		case "session_id":
			ok = json.Unmarshal(value, &e.SessionID) == nil
		case "referrer":
			ok = json.Unmarshal(value, &e.Referrer) == nil
		case "timestamp":
			ok = json.Unmarshal(value, &e.Timestamp) == nil
		case "visitor_hash":
			ok = json.Unmarshal(value, &e.VisitorHash) == nil
		case "ip_hash":
			ok = json.Unmarshal(value, &e.IPHash) == nil
		}
		// Values of an unexpected type stay in Extra as sent.
		if ok {
			e.sent[key] = true
		} else {
			e.Extra[key] = value
		}
	}
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+9)
	for key, value := range e.Extra {
		out[key] = value
	}

	setString := func(key, value string) {
		if value != "" || e.sent[key] {
			out[key] = value
		}
	}
	setString("event", e.Event)
	setString("page", e.Page)
	setString("browser", e.Browser)
	setString("session_id", e.SessionID)
	setString("referrer", e.Referrer)
	setString("visitor_hash", e.VisitorHash)
	setString("ip_hash", e.IPHash)
	if e.IsMobile || e.sent["is_mobile"] {
		out["is_mobile"] = e.IsMobile
	}
	if e.Timestamp != 0 || e.sent["timestamp"] {
		out["timestamp"] = e.Timestamp
	}

	return json.Marshal(out)
}

// Payload returns the event as stored, for sinks that keep the raw document.
func (e Event) Payload() string {
	b, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// DailyBucket aggregates one calendar day of page views.
type DailyBucket struct {
	Visitors  []string `json:"visitors"`
	Pageviews int64    `json:"pageviews"`
}

// AnalyticsDocument is the on-disk layout of analytics.json.
type AnalyticsDocument struct {
	Events      []Event                `json:"events"`
	DailyStats  map[string]DailyBucket `json:"dailyStats"`
	TotalVisits int64                  `json:"totalVisits"`
}

// NewAnalyticsDocument returns an empty document with non-nil collections.
func NewAnalyticsDocument() *AnalyticsDocument {
	return &AnalyticsDocument{
		Events:     []Event{},
		DailyStats: map[string]DailyBucket{},
	}
}

// Normalize fills collections a hand-edited or older file may lack.
func (d *AnalyticsDocument) Normalize() {
	if d.Events == nil {
		d.Events = []Event{}
	}
	if d.DailyStats == nil {
		d.DailyStats = map[string]DailyBucket{}
	}
	for date, bucket := range d.DailyStats {
		if bucket.Visitors == nil {
			bucket.Visitors = []string{}
			d.DailyStats[date] = bucket
		}
	}
}
