// Package remotedata tracks the lifecycle of asynchronous fetches.
package remotedata

import (
	"errors"
	"fmt"
)

type State int

const (
	NotRequested State = iota
	Loading
	Loaded
	Bad
)

func (s State) String() string {
	switch s {
	case NotRequested:
		return "not-requested"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Bad:
		return "bad"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RemoteData is one fetch result. Data is set only when Loaded; StatusCode
// and UserMessage only when Bad.
type RemoteData[T any] struct {
	State       State
	Data        T
	StatusCode  int
	UserMessage string
	Err         error
}

func NotRequestedData[T any]() RemoteData[T] { return RemoteData[T]{State: NotRequested} }

func LoadingData[T any]() RemoteData[T] { return RemoteData[T]{State: Loading} }

func LoadedData[T any](data T) RemoteData[T] {
	return RemoteData[T]{State: Loaded, Data: data}
}

func BadData[T any](statusCode int, userMessage string, err error) RemoteData[T] {
	return RemoteData[T]{State: Bad, StatusCode: statusCode, UserMessage: userMessage, Err: err}
}

func (r RemoteData[T]) HasLoaded() bool { return r.State == Loaded }

// Settled reports whether the fetch has finished, successfully or not.
func (r RemoteData[T]) Settled() bool { return r.State == Loaded || r.State == Bad }

// Unwrap converts back into Go's value/error pair.
func (r RemoteData[T]) Unwrap() (T, error) {
	switch r.State {
	case Loaded:
		return r.Data, nil
	case Bad:
		if r.Err != nil {
			return r.Data, r.Err
		}
		return r.Data, fmt.Errorf("remote data: status %d: %s", r.StatusCode, r.UserMessage)
	}
	return r.Data, fmt.Errorf("remote data: %s", r.State)
}

// Map converts the payload of a loaded value.
func Map[T, U any](r RemoteData[T], f func(T) U) RemoteData[U] {
	out := RemoteData[U]{State: r.State, StatusCode: r.StatusCode, UserMessage: r.UserMessage, Err: r.Err}
	if r.State == Loaded {
		out.Data = f(r.Data)
	}
	return out
}

// StatusCoder is implemented by errors carrying an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// UserMessager is implemented by errors that carry a message fit for end users.
type UserMessager interface {
	UserMessage() string
}

const DefaultUserMessage = "Noe gikk galt. Ta kontakt med support hvis problemet vedvarer."

// Classify maps an error onto the status code and user message of a Bad
// value. Errors without a status map to 0.
func Classify(err error) (int, string) {
	status := 0
	msg := DefaultUserMessage
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	var um UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		msg = um.UserMessage()
	}
	return status, msg
}
