package xcatalog

import "errors"

var (
	// ErrNilStore 表示未提供存储。
	ErrNilStore = errors.New("xcatalog: nil store")

	// ErrNilCache 表示未提供缓存。
	ErrNilCache = errors.New("xcatalog: nil cache")

	// ErrUnavailable 表示存储熔断中，请求被拒绝。
	ErrUnavailable = errors.New("xcatalog: store unavailable")

	// ErrInvalidArgument 表示参数校验失败。
	ErrInvalidArgument = errors.New("xcatalog: invalid argument")

	// ErrUnexpectedType 表示缓存或合并加载返回了非预期类型的值。
	ErrUnexpectedType = errors.New("xcatalog: unexpected value type")
)
