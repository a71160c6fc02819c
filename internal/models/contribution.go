package models

import "time"

// ContributionEvent is the atomic activity unit for the heatmap: one count on
// one calendar day. Both the contribution calendar and the push-events
// reconstruction produce these.
type ContributionEvent struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// HeatmapSource carries contribution events from exactly one feed. The
// calendar feed and the events feed may never be combined in one run, because
// the two sources overlap and cannot be deduplicated by identity.
type HeatmapSource struct {
	events       []ContributionEvent
	fromCalendar bool
}

// CalendarSource wraps contribution-calendar days as a heatmap source.
func CalendarSource(events []ContributionEvent) HeatmapSource {
	return HeatmapSource{events: events, fromCalendar: true}
}

// EventSource wraps push-event reconstructions as a heatmap source. It is the
// fallback used only when the calendar feed is unavailable.
func EventSource(events []ContributionEvent) HeatmapSource {
	return HeatmapSource{events: events, fromCalendar: false}
}

// Events returns the contribution events of the active feed.
func (s HeatmapSource) Events() []ContributionEvent {
	return s.events
}

// IsCalendar reports whether the source is the contribution calendar.
func (s HeatmapSource) IsCalendar() bool {
	return s.fromCalendar
}
