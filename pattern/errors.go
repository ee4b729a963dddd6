// Copyright 2026 The Wayfarer Authors
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

package pattern

import "errors"

var (
	// ErrEmptyTemplate indicates that the template text is empty.
	ErrEmptyTemplate = errors.New("template is empty")

	// ErrWildcardNotLast indicates that a wildcard segment appears before the
	// final position of the template.
	ErrWildcardNotLast = errors.New("wildcard must be the final segment")

	// ErrDuplicateParam indicates that a parameter name is declared more than
	// once within a single template.
	ErrDuplicateParam = errors.New("duplicate parameter name")

	// ErrMalformedSegment indicates that a segment matches no recognized form
	// (static literal, :name, :name?, or a trailing *).
	ErrMalformedSegment = errors.New("malformed segment")
)
