// Package fallback runs an ordered list of lookup strategies, cheapest first,
// ending in a terminal strategy that always produces a record.
package fallback

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

type Layer string

const (
	LayerShortcut  Layer = "Shortcut"
	LayerLive      Layer = "Live"
	LayerSimulated Layer = "Simulated"
)

type Result[T any] struct {
	Success     bool  `json:"success"`
	Data        T     `json:"data"`
	SourceLayer Layer `json:"source_layer,omitempty"`
}

// Strategy answers a lookup or reports that it does not apply. Errors stay
// inside the strategy; a failed strategy simply returns false.
type Strategy[T any] interface {
	Layer() Layer
	Lookup(ctx context.Context, key string) (T, bool)
}

// Terminal is the unconditional last layer.
type Terminal[T any] interface {
	Layer() Layer
	Synthesize(key string) T
}

type Chain[T any] struct {
	strategies []Strategy[T]
	terminal   Terminal[T]
	normalize  func(string) string
	valid      func(string) bool
	log        *logrus.Logger
}

type Option[T any] func(*Chain[T])

// WithValidator rejects structurally invalid keys before any layer runs.
func WithValidator[T any](valid func(string) bool) Option[T] {
	return func(c *Chain[T]) {
		c.valid = valid
	}
}

func WithNormalizer[T any](normalize func(string) string) Option[T] {
	return func(c *Chain[T]) {
		c.normalize = normalize
	}
}

func NewChain[T any](log *logrus.Logger, terminal Terminal[T], strategies []Strategy[T], opts ...Option[T]) *Chain[T] {
	c := &Chain[T]{
		strategies: strategies,
		terminal:   terminal,
		normalize:  NormalizeKey,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Acquire walks the layers in order. The result is unsuccessful only when the
// key fails validation.
func (c *Chain[T]) Acquire(ctx context.Context, key string) Result[T] {
	key = c.normalize(key)

	if c.valid != nil && !c.valid(key) {
		c.log.WithFields(logrus.Fields{
			"key": key,
		}).Warn("[fallback.Acquire] rejected invalid key")
		return Result[T]{Success: false}
	}

	for _, s := range c.strategies {
		if ctx.Err() != nil {
			break
		}
		if data, ok := s.Lookup(ctx, key); ok {
			c.log.WithFields(logrus.Fields{
				"key":   key,
				"layer": s.Layer(),
			}).Debug("[fallback.Acquire] layer answered")
			return Result[T]{Success: true, Data: data, SourceLayer: s.Layer()}
		}
	}

	c.log.WithFields(logrus.Fields{
		"key":   key,
		"layer": c.terminal.Layer(),
	}).Info("[fallback.Acquire] falling back to terminal layer")

	return Result[T]{
		Success:     true,
		Data:        c.terminal.Synthesize(key),
		SourceLayer: c.terminal.Layer(),
	}
}

// NormalizeKey trims the key and removes inner whitespace.
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(key), "")
}
