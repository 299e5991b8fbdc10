package boundedcontext

import (
	"errors"
	"fmt"
)

// ErrorKind 远程调用失败类型
type ErrorKind int

const (
	KindTransport ErrorKind = iota // 连接、DNS、超时
	KindStatus                     // 非 2xx
	KindRead                       // 读取响应体失败
	KindDecode                     // 响应 JSON 不匹配
)

var (
	ErrTransport = errors.New("bounded context: transport failure")
	ErrStatus    = errors.New("bounded context: unexpected status")
	ErrRead      = errors.New("bounded context: read response failure")
	ErrDecode    = errors.New("bounded context: decode failure")
)

var sentinels = map[ErrorKind]error{
	KindTransport: ErrTransport,
	KindStatus:    ErrStatus,
	KindRead:      ErrRead,
	KindDecode:    ErrDecode,
}

// Error 限界上下文调用错误，不重试
type Error struct {
	Kind       ErrorKind
	StatusCode int    // 仅 KindStatus
	Body       string // 仅 KindStatus，截断
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s %d: %s", ErrStatus, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: %v", sentinels[e.Kind], e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 支持 errors.Is(err, ErrTransport) 这类判断
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}
