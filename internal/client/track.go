package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdbar/internal/domain"
)

// trackFromAttrs builds a Track from a song reply. Entries outside the queue
// (search results) carry no Id and get -1.
func trackFromAttrs(attrs mpd.Attrs) domain.Track {
	return domain.Track{
		ID:       atoiDefault(attrs["Id"], -1),
		Position: atoiDefault(attrs["Pos"], -1),
		Title:    attrs["Title"],
		Artist:   attrs["Artist"],
		Album:    attrs["Album"],
		Number:   trackNumber(attrs["Track"]),
		Duration: songDuration(attrs),
		URI:      attrs["file"],
	}
}

func tracksFromAttrs(list []mpd.Attrs) []domain.Track {
	tracks := make([]domain.Track, 0, len(list))
	for _, attrs := range list {
		tracks = append(tracks, trackFromAttrs(attrs))
	}
	return tracks
}

// trackNumber accepts "3" and "3/12"
func trackNumber(raw string) int {
	num, _, _ := strings.Cut(raw, "/")
	return atoiDefault(strings.TrimSpace(num), 0)
}

func songDuration(attrs mpd.Attrs) time.Duration {
	if raw, ok := attrs["duration"]; ok {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if raw, ok := attrs["Time"]; ok {
		if secs, err := strconv.Atoi(raw); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func atoiDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func parseFlag(raw string) bool {
	return raw == "1"
}
