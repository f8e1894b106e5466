// Package errs описывает таксономию ошибок подсистемы синхронизации.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrBadRequest - запрос без обязательных полей или с неверным форматом
	ErrBadRequest = errors.New("bad request")
	// ErrUnknownCollection - для коллекции не настроен набор правил
	ErrUnknownCollection = errors.New("unknown collection")
)

// Kind класс ошибки, по которому принимается решение об ответе клиенту
type Kind string

const (
	KindNone         Kind = ""
	KindRequest      Kind = "request"
	KindUnconfigured Kind = "unconfigured"
	KindItem         Kind = "item"
	KindFatal        Kind = "fatal"
)

// ItemError ошибка одного элемента пакета (документа, коллекции, сессии).
// Не прерывает агрегированную операцию.
type ItemError struct {
	Key string
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Item оборачивает ошибку как ошибку отдельного элемента
func Item(key string, err error) error {
	if err == nil {
		return nil
	}
	return &ItemError{Key: key, Err: err}
}

// BadRequest возвращает ошибку запроса с пояснением
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// KindOf классифицирует ошибку
func KindOf(err error) Kind {
	var item *ItemError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBadRequest):
		return KindRequest
	case errors.Is(err, ErrUnknownCollection):
		return KindUnconfigured
	case errors.As(err, &item):
		return KindItem
	default:
		return KindFatal
	}
}

// Result значение подоперации либо классифицированная ошибка
type Result[T any] struct {
	Value T
	Err   error
}

// OK возвращает успешный результат
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail возвращает неуспешный результат
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) Failed() bool {
	return r.Err != nil
}

func (r Result[T]) Kind() Kind {
	return KindOf(r.Err)
}
