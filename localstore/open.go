package localstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string

	// Path is the directory for the file backend or the database file for
	// the sqlite backend.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration
}

// Open builds the configured backend. The returned close function releases
// any handle the backend holds and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), noop, nil

	case BackendFile, "":
		s, err := NewFile(opts.Path)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case BackendSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "portal.db")
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	case BackendRedis:
		client, err := DialRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		return NewRedis(client, prefix, opts.RedisTTL), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("localstore: unknown backend %q (want one of %v)", opts.Backend, Backends)
	}
}
