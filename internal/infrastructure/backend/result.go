package backend

import "github.com/campus-marketplace/internal/domain"

// Result is the decoded backend envelope: either the payload of a
// {"success": true, "data": ...} response or the failure carried by
// {"success": false, "detail": "..."}. The zero value is not valid.
type Result[T any] struct {
	ok   bool
	data T
	fail *domain.UpstreamError
}

func Ok[T any](data T) Result[T] {
	return Result[T]{ok: true, data: data}
}

func Fail[T any](err *domain.UpstreamError) Result[T] {
	return Result[T]{fail: err}
}

// Match calls exactly one of the two branches.
func (r Result[T]) Match(onOk func(T), onFail func(*domain.UpstreamError)) {
	if r.ok {
		onOk(r.data)
		return
	}
	onFail(r.fail)
}

// Unwrap converts the result into Go's usual (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.data, nil
	}
	var zero T
	return zero, r.fail
}

func (r Result[T]) IsOk() bool { return r.ok }
