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

package wayfarer

import "errors"

var (
	// ErrTemplateNil indicates that a nil route template was registered.
	ErrTemplateNil = errors.New("route template is nil")

	// ErrMatcherDisposed indicates that the matcher has been disposed and can
	// no longer be used.
	ErrMatcherDisposed = errors.New("matcher is disposed")

	// ErrCacheCapacityInvalid indicates that the cache capacity must be positive.
	ErrCacheCapacityInvalid = errors.New("cache capacity must be positive")

	// ErrCacheBoundsInvalid indicates that the cache capacity bounds are
	// inconsistent (min > max, or capacity outside [min, max]).
	ErrCacheBoundsInvalid = errors.New("cache capacity bounds invalid")

	// ErrHandlerNil indicates that a nil middleware handler was registered.
	ErrHandlerNil = errors.New("middleware handler is nil")

	// ErrRoutesFileUnsupported indicates that a routes file has an extension
	// other than .yaml, .yml, or .toml.
	ErrRoutesFileUnsupported = errors.New("unsupported routes file format")
)
