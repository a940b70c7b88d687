package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/anirudhraja/tagwire/schema"
)

var (
	// ErrNotFound is returned when no message or enum matches a name.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a name is registered twice with
	// different shapes.
	ErrConflict = errors.New("conflicting definition")
	// ErrAmbiguous is returned when a short name matches more than one
	// registered definition.
	ErrAmbiguous = errors.New("ambiguous name")
)

type messageEntry struct {
	msg         *schema.Message
	fingerprint schema.Fingerprint
}

// Registry allows us to store the schema of the protobuf messages. We look
// this up when we need to parse or marshal a message. It is safe for
// concurrent use.
type Registry struct {
	messages *xsync.Map[string, messageEntry] // fully qualified name -> message
	enums    *xsync.Map[string, *schema.Enum] // fully qualified name -> enum
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		messages: xsync.NewMap[string, messageEntry](),
		enums:    xsync.NewMap[string, *schema.Enum](),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Register validates each message and registers it together with every
// message and enum reachable from it. Registering the same shape again is a
// no-op; registering a different shape under a taken name fails with
// ErrConflict.
func (r *Registry) Register(msgs ...*schema.Message) error {
	for _, msg := range msgs {
		if err := schema.Validate(msg); err != nil {
			return err
		}

		var err error
		schema.Walk(msg, func(m *schema.Message) bool {
			err = r.registerMessage(m)
			if err != nil {
				return false
			}
			for _, f := range m.Fields {
				if f.Enum != nil {
					if err = r.RegisterEnum(f.Enum); err != nil {
						return false
					}
				}
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerMessage(m *schema.Message) error {
	entry := messageEntry{msg: m, fingerprint: schema.FingerprintOf(m)}
	existing, loaded := r.messages.LoadOrStore(m.Name, entry)
	if !loaded {
		r.logger.Debug("registered message", "name", m.Name, "fingerprint", entry.fingerprint.String()[:16])
		return nil
	}
	if existing.fingerprint != entry.fingerprint {
		return fmt.Errorf("%w: message %s", ErrConflict, m.Name)
	}
	return nil
}

// RegisterEnum registers an enum definition. Enums are matched by name and
// value set.
func (r *Registry) RegisterEnum(e *schema.Enum) error {
	if e == nil || e.Name == "" {
		return fmt.Errorf("%w: enum without a name", schema.ErrInvalidDescriptor)
	}
	existing, loaded := r.enums.LoadOrStore(e.Name, e)
	if loaded && existing != e && !sameEnum(existing, e) {
		return fmt.Errorf("%w: enum %s", ErrConflict, e.Name)
	}
	if !loaded {
		r.logger.Debug("registered enum", "name", e.Name, "values", len(e.Values))
	}
	return nil
}

func sameEnum(a, b *schema.Enum) bool {
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if *a.Values[i] != *b.Values[i] {
			return false
		}
	}
	return true
}

// GetMessage retrieves a message definition by name. A name that is not
// registered exactly is matched against the trailing components of the full
// names and must identify a single message.
func (r *Registry) GetMessage(name string) (*schema.Message, error) {
	if entry, exists := r.messages.Load(name); exists {
		return entry.msg, nil
	}

	// Try without package prefix
	var matches []string
	var found *schema.Message
	r.messages.Range(func(fullName string, entry messageEntry) bool {
		if strings.HasSuffix(fullName, "."+name) {
			matches = append(matches, fullName)
			found = entry.msg
		}
		return true
	})
	if err := checkMatches("message", name, matches); err != nil {
		return nil, err
	}
	return found, nil
}

// Fingerprint returns the fingerprint recorded for a registered message.
func (r *Registry) Fingerprint(name string) (schema.Fingerprint, bool) {
	entry, ok := r.messages.Load(name)
	return entry.fingerprint, ok
}

// GetEnum retrieves an enum definition by name, resolving suffixes the way
// GetMessage does.
func (r *Registry) GetEnum(name string) (*schema.Enum, error) {
	if enum, exists := r.enums.Load(name); exists {
		return enum, nil
	}

	// Try without package prefix
	var matches []string
	var found *schema.Enum
	r.enums.Range(func(fullName string, enum *schema.Enum) bool {
		if strings.HasSuffix(fullName, "."+name) {
			matches = append(matches, fullName)
			found = enum
		}
		return true
	})
	if err := checkMatches("enum", name, matches); err != nil {
		return nil, err
	}
	return found, nil
}

// checkMatches reports whether a suffix lookup resolved to exactly one name.
func checkMatches(kind, name string, matches []string) error {
	switch len(matches) {
	case 0:
		return fmt.Errorf("%s %s: %w", kind, name, ErrNotFound)
	case 1:
		return nil
	}
	slices.Sort(matches)
	return fmt.Errorf("%s %s: %w: %s", kind, name, ErrAmbiguous, strings.Join(matches, ", "))
}

// ListMessages returns all registered message names, sorted.
func (r *Registry) ListMessages() []string {
	var names []string
	r.messages.Range(func(name string, _ messageEntry) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// ListEnums returns all registered enum names, sorted.
func (r *Registry) ListEnums() []string {
	var names []string
	r.enums.Range(func(name string, _ *schema.Enum) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
