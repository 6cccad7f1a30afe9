package xevent

import "errors"

var (
	// ErrInvalidEvent 表示活动字段校验失败。
	ErrInvalidEvent = errors.New("xevent: invalid event")

	// ErrInvalidStatus 表示报名状态不是 going、maybe、not_going 之一。
	ErrInvalidStatus = errors.New("xevent: invalid rsvp status")
)
