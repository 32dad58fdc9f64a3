package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"portfolio/devserver/models"
)

// LoadTracks reads the music catalogue, a JSON array of tracks.
func LoadTracks(path string) ([]models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tracks file: %w", err)
	}

	var tracks []models.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("parsing tracks file %s: %w", path, err)
	}
	return tracks, nil
}

// FilterByTag keeps tracks carrying tag. An empty tag keeps everything.
func FilterByTag(tracks []models.Track, tag string) []models.Track {
	if tag == "" {
		return tracks
	}
	var out []models.Track
	for _, t := range tracks {
		if t.HasTag(tag) {
			out = append(out, t)
		}
	}
	return out
}

// AllTags returns the distinct tags of the catalogue, sorted.
func AllTags(tracks []models.Track) []string {
	set := make(map[string]struct{})
	for _, t := range tracks {
		for _, tag := range t.Tags {
			set[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
