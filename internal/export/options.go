package export

import "time"

type options struct {
	loc    *time.Location
	indent string
}

// Option configures an export.
type Option func(*options)

// WithLocation sets the zone dates are written in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithIndent sets the JSON indent. An empty string writes compact JSON.
func WithIndent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

func apply(opts []Option) options {
	o := options{loc: time.UTC, indent: "  "}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
