package schema

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Adapter parses raw contract text into the normalized model. Adapters must
// be pure: same bytes in, same model out, with stable declaration order.
type Adapter interface {
	Format() Format
	Parse(raw []byte) (*Model, error)
}

// ParseError reports malformed adapter input. It is the only user-visible
// failure mode of the pipeline; comparison itself never fails on well-formed
// models.
type ParseError struct {
	Format Format
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Format, e.Detail, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Format, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps a parse failure with its format context.
func NewParseError(format Format, detail string, err error) *ParseError {
	return &ParseError{Format: format, Detail: detail, Err: err}
}

// AdapterRegistry holds the adapters available to a caller. Instances are
// built explicitly at startup; there is no package-level registry.
type AdapterRegistry struct {
	adapters map[Format]Adapter
	log      *logrus.Logger
}

// NewAdapterRegistry creates an empty registry. A nil logger disables
// registration logging.
func NewAdapterRegistry(log *logrus.Logger) *AdapterRegistry {
	return &AdapterRegistry{
		adapters: make(map[Format]Adapter),
		log:      log,
	}
}

// Register adds an adapter, replacing any previous adapter for its format.
func (r *AdapterRegistry) Register(a Adapter) {
	if r.log != nil {
		r.log.WithFields(logrus.Fields{
			"format": string(a.Format()),
		}).Debug("registered contract adapter")
	}
	r.adapters[a.Format()] = a
}

// Get returns the adapter for a format.
func (r *AdapterRegistry) Get(format Format) (Adapter, bool) {
	a, ok := r.adapters[format]
	return a, ok
}

// Parse resolves the adapter for the hint and parses the input.
func (r *AdapterRegistry) Parse(raw []byte, format Format) (*Model, error) {
	a, ok := r.adapters[format]
	if !ok {
		return nil, NewParseError(format, "no adapter registered", nil)
	}
	return a.Parse(raw)
}

// Formats returns the registered formats in registration-independent,
// deterministic order.
func (r *AdapterRegistry) Formats() []Format {
	order := []Format{
		FormatProtobuf, FormatAvro, FormatOpenAPI,
		FormatGraphQL, FormatJSONSchema, FormatSQL,
	}
	out := make([]Format, 0, len(r.adapters))
	for _, f := range order {
		if _, ok := r.adapters[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ParseFormat converts a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatProtobuf, FormatAvro, FormatOpenAPI, FormatGraphQL, FormatJSONSchema, FormatSQL:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown contract format: %q", s)
}
