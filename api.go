// Package tagwire encodes and decodes tagged binary messages against
// descriptors held in a registry, without generated code.
package tagwire

import (
	"fmt"
	"log/slog"

	"github.com/anirudhraja/tagwire/registry"
	"github.com/anirudhraja/tagwire/schema"
	"github.com/anirudhraja/tagwire/wire"
)

// ===== SCHEMA-AWARE API =====

// Codec resolves message names through a registry and runs the wire codec
// with a fixed set of decode options. A Codec is safe for concurrent use.
type Codec struct {
	registry *registry.Registry
	options  wire.UnmarshalOptions
	logger   *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithRegistry makes the codec resolve names through r instead of a fresh
// empty registry.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Codec) {
		c.registry = r
	}
}

// WithUnmarshalOptions sets the options used by Unmarshal and
// UnmarshalLength.
func WithUnmarshalOptions(o wire.UnmarshalOptions) Option {
	return func(c *Codec) {
		c.options = o
	}
}

// WithLogger sets the logger used for decode failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// New creates a new Codec
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.registry == nil {
		c.registry = registry.NewRegistry(registry.WithLogger(c.logger))
	}
	return c
}

// Register adds message descriptors, and everything reachable from them, to
// the codec's registry.
func (c *Codec) Register(msgs ...*schema.Message) error {
	return c.registry.Register(msgs...)
}

// NewInstance returns an empty instance of the named message.
func (c *Codec) NewInstance(messageType string) (*wire.Instance, error) {
	msg, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	return wire.NewInstance(msg), nil
}

// Marshal encodes an instance. Encoding cannot fail: instances only hold
// values that match their descriptor.
func (c *Codec) Marshal(inst *wire.Instance) []byte {
	return wire.Marshal(inst)
}

// Size returns the length of Marshal(inst) without encoding it.
func (c *Codec) Size(inst *wire.Instance) int {
	return wire.Size(inst)
}

// Unmarshal decodes data as the named message.
func (c *Codec) Unmarshal(data []byte, messageType string) (*wire.Instance, error) {
	msg, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	inst, err := c.options.Unmarshal(data, msg)
	if err != nil {
		c.logger.Debug("decode failed", "message", msg.Name, "size", len(data), "error", err)
		return nil, fmt.Errorf("decode %s: %w", msg.Name, err)
	}
	return inst, nil
}

// UnmarshalLength decodes the first length bytes of data as the named
// message. The rest of data is left alone.
func (c *Codec) UnmarshalLength(data []byte, length int, messageType string) (*wire.Instance, error) {
	msg, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	inst, err := c.options.UnmarshalLength(data, length, msg)
	if err != nil {
		c.logger.Debug("decode failed", "message", msg.Name, "size", len(data), "length", length, "error", err)
		return nil, fmt.Errorf("decode %s: %w", msg.Name, err)
	}
	return inst, nil
}

// ===== REGISTRY ACCESS =====

func (c *Codec) Registry() *registry.Registry { return c.registry }
func (c *Codec) ListMessages() []string        { return c.registry.ListMessages() }
func (c *Codec) ListEnums() []string           { return c.registry.ListEnums() }
