package crawler

import (
	"net/http"
	"strconv"
)

// Status is the outcome of a status check.
//
// A status is either reachable, it then carries the code of the final response (error-class codes included), or unreachable, it then
// carries the error that prevented the request from completing.
type Status struct {
	code      int
	err       error
	reachable bool
}

// StatusCode creates a reachable status with the code of the response.
func StatusCode(code int) Status {
	return Status{code: code, reachable: true}
}

// Unreachable creates a status for a request that could not be completed.
func Unreachable(err error) Status {
	if err == nil {
		err = ErrUnknownStatus
	}

	return Status{err: err}
}

// Reachable tells whether the server answered.
func (s Status) Reachable() bool {
	return s.reachable
}

// Code returns the status code and whether the server answered.
func (s Status) Code() (int, bool) {
	return s.code, s.reachable
}

// Err returns the cause of an unreachable status, nil if the server answered.
func (s Status) Err() error {
	if s.reachable {
		return nil
	}

	if s.err == nil {
		return ErrUnknownStatus
	}

	return s.err
}

// IsNotFound tells whether the server answered with exactly 404. Unreachable statuses are never not found.
func (s Status) IsNotFound() bool {
	return s.reachable && s.code == http.StatusNotFound
}

// String returns the code, or "unreachable".
func (s Status) String() string {
	if !s.reachable {
		return "unreachable"
	}

	return strconv.Itoa(s.code)
}
