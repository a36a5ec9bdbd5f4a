package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RedisMirror stores every artifact's JSON under <prefix>:<artifact>, without expiry.
// The artifact part is the file name without ".json", e.g. "egov:events".
type RedisMirror struct {
	prefix string
	kv     KVStore
	logger *zap.Logger
}

// NewRedisMirror creates a new mirror
func NewRedisMirror(prefix string, kv KVStore, logger *zap.Logger) *RedisMirror {
	return &RedisMirror{
		prefix: prefix,
		kv:     kv,
		logger: logger,
	}
}

// Key returns the key holding artifact file name
func (m *RedisMirror) Key(name string) string {
	return fmt.Sprintf("%s:%s", m.prefix, strings.TrimSuffix(name, ".json"))
}

// MirrorAll writes every artifact, joining failures
func (m *RedisMirror) MirrorAll(ctx context.Context, a *Artifacts) error {
	var errs []error
	for _, item := range a.list() {
		data, err := EncodeJSON(item.payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode %s: %w", item.name, err))
			continue
		}

		key := m.Key(item.name)
		if err := m.kv.Set(ctx, key, string(data), 0); err != nil {
			errs = append(errs, fmt.Errorf("failed to set %s: %w", key, err))
			continue
		}

		m.logger.Debug("Mirrored artifact",
			zap.String("key", key),
			zap.Int("bytes", len(data)),
		)
	}
	return errors.Join(errs...)
}
