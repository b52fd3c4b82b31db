// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the error kinds shared by releasekit packages.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrIO reports a failure reading or writing a file.
	ErrIO = errors.New("io failure")
	// ErrRemote reports a failed call to a remote service such as JIRA.
	ErrRemote = errors.New("remote service failure")
)

// LibError is an error of a known kind, with a human readable reason and an
// optional cause.
type LibError struct {
	Kind   error
	Reason string
	Cause  error
}

// Error formats the error as kind: reason, followed by the cause.
func (e *LibError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
}

// Unwrap returns both the kind and the cause so errors.Is matches either.
func (e *LibError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// CustomError returns an error of the given kind with a formatted reason.
func CustomError(kind error, template string, params ...any) error {
	return &LibError{
		Kind:   kind,
		Reason: fmt.Sprintf(template, params...),
	}
}

// CustomErrorWrap is like CustomError but records cause as the underlying
// error.
func CustomErrorWrap(kind error, cause error, template string, params ...any) error {
	return &LibError{
		Kind:   kind,
		Reason: fmt.Sprintf(template, params...),
		Cause:  cause,
	}
}

// IO wraps cause as an ErrIO failure.
func IO(cause error, template string, params ...any) error {
	return CustomErrorWrap(ErrIO, cause, template, params...)
}

// Remote wraps cause as an ErrRemote failure.
func Remote(cause error, template string, params ...any) error {
	return CustomErrorWrap(ErrRemote, cause, template, params...)
}
