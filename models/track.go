package models

import (
	"encoding/json"
	"strings"
)

type TrackSource struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// Track is one entry of the music catalogue (assets/js/tracks.json).
type Track struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Artist  string          `json:"artist,omitempty"`
	Tags    []string        `json:"tags,omitempty"`
	Year    json.RawMessage `json:"year,omitempty"`
	Sources []TrackSource   `json:"sources,omitempty"`
	URL     string          `json:"url,omitempty"`
	Cover   string          `json:"cover,omitempty"`
}

// AudioURL returns the first source, falling back to the legacy url field.
func (t Track) AudioURL() string {
	if len(t.Sources) > 0 && t.Sources[0].URL != "" {
		return t.Sources[0].URL
	}
	return t.URL
}

// YearString renders year whether the catalogue stores it as a number or a string.
func (t Track) YearString() string {
	if len(t.Year) == 0 || string(t.Year) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(t.Year, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(t.Year))
}

func (t Track) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}
