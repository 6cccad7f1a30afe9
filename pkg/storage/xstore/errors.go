package xstore

import "errors"

var (
	// ErrNilClient 表示传入的 Redis 客户端为 nil。
	ErrNilClient = errors.New("xstore: nil client")

	// ErrNotFound 表示请求的记录不存在。
	ErrNotFound = errors.New("xstore: not found")

	// ErrInvalidEvent 表示活动校验失败。
	ErrInvalidEvent = errors.New("xstore: invalid event")

	// ErrInvalidRSVP 表示报名记录校验失败。
	ErrInvalidRSVP = errors.New("xstore: invalid rsvp")

	// ErrInvalidProfile 表示用户资料校验失败。
	ErrInvalidProfile = errors.New("xstore: invalid profile")

	// ErrAlreadyExists 表示以已存在的 ID 创建活动。
	ErrAlreadyExists = errors.New("xstore: already exists")

	// ErrCorruptRecord 表示存储中的记录无法解码。
	ErrCorruptRecord = errors.New("xstore: corrupt record")
)
