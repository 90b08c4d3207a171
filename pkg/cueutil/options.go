// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize bounds user CUE files. Configuration files are small;
// anything larger is a mistake.
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() options {
	return options{maxFileSize: DefaultMaxFileSize}
}

// WithFilename names the input in error messages.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *options) {
		o.maxFileSize = size
	}
}

// WithConcrete requires every field of the unified value to be concrete.
// Without it, optional fields may stay unset.
func WithConcrete() Option {
	return func(o *options) {
		o.concrete = true
	}
}
