package xevent

import (
	"fmt"
	"strings"
	"time"
)

// RSVPStatus 是报名状态。
type RSVPStatus string

const (
	StatusGoing    RSVPStatus = "going"
	StatusMaybe    RSVPStatus = "maybe"
	StatusNotGoing RSVPStatus = "not_going"
)

// IsValid 报告状态是否为已定义的取值。
func (s RSVPStatus) IsValid() bool {
	switch s {
	case StatusGoing, StatusMaybe, StatusNotGoing:
		return true
	}
	return false
}

// String 实现 fmt.Stringer。
func (s RSVPStatus) String() string { return string(s) }

// ParseRSVPStatus 解析报名状态，忽略大小写与首尾空白，接受 "not-going" 写法。
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	st := RSVPStatus(norm)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// MarshalText 实现 encoding.TextMarshaler。
func (s RSVPStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (s *RSVPStatus) UnmarshalText(data []byte) error {
	st, err := ParseRSVPStatus(string(data))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// RSVP 是用户对活动的报名记录，每个 (EventID, UserID) 至多一条。
type RSVP struct {
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CountGoing 返回状态为 going 的报名数。
func CountGoing(rsvps []RSVP) int {
	n := 0
	for _, r := range rsvps {
		if r.Status == StatusGoing {
			n++
		}
	}
	return n
}
