package xevent

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 是 Event.Date 的格式。
const DateLayout = time.DateOnly

// Event 是一场活动。
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Time         string    `json:"time"` // HH:MM
	Location     string    `json:"location"`
	Address      string    `json:"address"`
	Category     string    `json:"category"`
	MaxAttendees int       `json:"max_attendees"`
	OrganizerID  string    `json:"organizer_id"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// AttendeeCount 是状态为 going 的报名数，由存储层读取时填充。
	AttendeeCount int `json:"attendee_count"`
}

// Day 返回活动日期（UTC 零点）。
func (e Event) Day() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}

// AttendanceRate 返回 AttendeeCount/MaxAttendees，MaxAttendees 非正时为 0。
func (e Event) AttendanceRate() float64 {
	if e.MaxAttendees <= 0 {
		return 0
	}
	return float64(e.AttendeeCount) / float64(e.MaxAttendees)
}

// Validate 校验创建活动所需的字段。
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidEvent)
	}
	if _, err := e.Day(); err != nil {
		return fmt.Errorf("%w: date %q: %w", ErrInvalidEvent, e.Date, err)
	}
	if e.MaxAttendees <= 0 {
		return fmt.Errorf("%w: max_attendees must be positive", ErrInvalidEvent)
	}
	return nil
}
