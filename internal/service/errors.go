package service

import "errors"

// 错误分类：边界层据此映射 HTTP 状态码。
// 任何一类都只影响当次提交，不会使进程退出。
var (
	// ErrInvalidInput 输入校验失败，在任何读写存储之前返回
	ErrInvalidInput = errors.New("输入不合法")

	// ErrUnavailable 存储不可用或超时，调用方可从头重试整个提交
	ErrUnavailable = errors.New("存储暂不可用")

	// ErrConflict 提交时输掉了并发竞争，调用方应从读取当前记录处重试
	ErrConflict = errors.New("记录已被并发修改")
)
