package xevent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() Event {
	return Event{
		Title:        "Go Meetup",
		Date:         "2024-06-08",
		Time:         "18:30",
		Category:     "Technology",
		MaxAttendees: 50,
	}
}

func TestEvent_Validate(t *testing.T) {
	require.NoError(t, validEvent().Validate())

	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"MissingTitle", func(e *Event) { e.Title = "  " }},
		{"MissingCategory", func(e *Event) { e.Category = "" }},
		{"BadDate", func(e *Event) { e.Date = "08/06/2024" }},
		{"ZeroCapacity", func(e *Event) { e.MaxAttendees = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)
			assert.ErrorIs(t, e.Validate(), ErrInvalidEvent)
		})
	}
}

func TestEvent_AttendanceRate(t *testing.T) {
	e := Event{MaxAttendees: 10, AttendeeCount: 8}
	assert.InDelta(t, 0.8, e.AttendanceRate(), 1e-9)
	assert.Zero(t, Event{AttendeeCount: 3}.AttendanceRate())
}

func TestParseRSVPStatus(t *testing.T) {
	tests := []struct {
		in   string
		want RSVPStatus
	}{
		{"going", StatusGoing},
		{" Maybe ", StatusMaybe},
		{"not_going", StatusNotGoing},
		{"NOT-GOING", StatusNotGoing},
	}
	for _, tt := range tests {
		got, err := ParseRSVPStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRSVPStatus("interested")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.False(t, RSVPStatus("").IsValid())
}

func TestRSVP_JSON(t *testing.T) {
	var r RSVP
	require.NoError(t, json.Unmarshal([]byte(`{"event_id":"e1","user_id":"u1","status":"maybe"}`), &r))
	assert.Equal(t, StatusMaybe, r.Status)

	err := json.Unmarshal([]byte(`{"status":"later"}`), &r)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = json.Marshal(RSVP{Status: "bogus"})
	assert.Error(t, err)
}

func TestCountGoing(t *testing.T) {
	rsvps := []RSVP{
		{Status: StatusGoing}, {Status: StatusMaybe}, {Status: StatusGoing}, {Status: StatusNotGoing},
	}
	assert.Equal(t, 2, CountGoing(rsvps))
	assert.Zero(t, CountGoing(nil))
}

func TestFilter_Match(t *testing.T) {
	e := Event{
		Title:       "Jazz Night",
		Description: "Live music downtown",
		Location:    "Blue Note, Seattle",
		Category:    "Music",
	}
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"Empty", Filter{}, true},
		{"All", Filter{Category: "ALL"}, true},
		{"CategoryFold", Filter{Category: "music"}, true},
		{"CategoryMismatch", Filter{Category: "Sports"}, false},
		{"QueryTitle", Filter{Query: "JAZZ"}, true},
		{"QueryDescription", Filter{Query: "downtown"}, true},
		{"QueryLocation", Filter{Query: "seattle"}, true},
		{"QueryMiss", Filter{Query: "opera"}, false},
		{"Both", Filter{Category: "Music", Query: "night"}, true},
		{"BothCategoryMiss", Filter{Category: "Art", Query: "night"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(e))
		})
	}
}

func TestFilterEvents_KeepsOrder(t *testing.T) {
	events := []Event{
		{ID: "1", Category: "Music"},
		{ID: "2", Category: "Sports"},
		{ID: "3", Category: "music"},
	}
	got := FilterEvents(events, Filter{Category: "Music"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
