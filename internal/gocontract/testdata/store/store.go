package store

import (
	"context"
	"time"
)

type Item struct {
	Key   string
	Value []byte
}

type Reader interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Has(key string) bool
}

type Store interface {
	Reader
	Put(ctx context.Context, key string, value []byte) error
	List(prefix string, limit int) ([]Item, error)
	Stat(key string) (size int64, modified time.Time, err error)
	Tags(keys ...string) map[string]string
}

type Set[T comparable] interface {
	Add(v T) bool
}

type notExported interface {
	Close() error
}

type Config struct {
	Path string
}
