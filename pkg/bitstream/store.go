package bitstream

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// Store opens images through a filesystem and keeps the most recently used
// ones in memory. A reference image diffed against hundreds of samples is
// then read only once.
type Store struct {
	fs     afero.Fs
	cache  *lru.Cache[string, *Image]
	opts   []Option
	logger log.Logger
}

// NewStore creates a Store that caches up to size images.
func NewStore(fsys afero.Fs, size int, logger log.Logger, opts ...Option) (*Store, error) {
	cache, err := lru.New[string, *Image](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{
		fs:     fsys,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}, nil
}

// Get returns the image stored at name, opening it on a cache miss.
func (s *Store) Get(name string) (*Image, error) {
	if img, ok := s.cache.Get(name); ok {
		return img, nil
	}

	img, err := Open(s.fs, name, s.opts...)
	if err != nil {
		return nil, err
	}
	level.Debug(s.logger).Log("msg", "opened image", "file", name, "bytes", img.Size(), "fingerprint", img.Fingerprint())

	s.cache.Add(name, img)
	return img, nil
}

// Len returns the number of cached images.
func (s *Store) Len() int {
	return s.cache.Len()
}
