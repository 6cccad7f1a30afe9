package app

import "errors"

var (
	// ErrInvalidConfig 表示配置校验失败。
	ErrInvalidConfig = errors.New("app: invalid config")
)
