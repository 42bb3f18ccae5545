// Copyright 2026 The HackGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provision

import "net/http"

// Kind classifies a provisioning failure.
type Kind string

const (
	// KindConfiguration: the server itself is misconfigured (missing
	// identity-store admin credentials). Not a caller error.
	KindConfiguration Kind = "configuration"

	// KindUnauthenticated: no or invalid caller credential. Recoverable by
	// signing in again.
	KindUnauthenticated Kind = "unauthenticated"

	// KindForbidden: valid caller, insufficient role. The response never
	// says more than "Forbidden".
	KindForbidden Kind = "forbidden"

	// KindValidation: malformed request input. Recoverable by correcting
	// the input.
	KindValidation Kind = "validation"

	// KindUpstream: the identity store failed. The store's message is
	// passed through; the call is not retried.
	KindUpstream Kind = "upstream"
)

// Error is a classified provisioning failure.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errConfiguration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

func errUnauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "Unauthorized"}
}

func errForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Forbidden"}
}

func errValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func errUpstream(cause error) *Error {
	return &Error{Kind: KindUpstream, Message: cause.Error(), cause: cause}
}
