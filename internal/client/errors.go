package client

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponseBody возвращается, когда успешный ответ пришел без тела.
	ErrEmptyResponseBody = errors.New("empty response body")
	// ErrNotFound сопоставляется с HTTPError со статусом 404.
	ErrNotFound = errors.New("sales item not found")
)

// HTTPError описывает ответ сервиса со статусом вне диапазона 2xx.
type HTTPError struct {
	Status int
	Reason string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Status, e.Reason)
}

// Is позволяет сравнивать 404 с ErrNotFound через errors.Is.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// EmptyBodyError описывает успешный ответ без тела.
type EmptyBodyError struct {
	Status int
}

func (e *EmptyBodyError) Error() string {
	return fmt.Sprintf("%s (status %d)", ErrEmptyResponseBody, e.Status)
}

func (e *EmptyBodyError) Is(target error) bool {
	return target == ErrEmptyResponseBody
}

// TransportError описывает сбой, при котором ответ от сервиса не получен.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTemporary сообщает, имеет ли смысл повторить запрос: сбой транспорта,
// 429 или 5xx.
func IsTemporary(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == 429 || httpErr.Status >= 500
	}
	return false
}
