// Package prefs persists small user preferences as key/value pairs.
package prefs

import (
	"fmt"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
)

// KV is a string key/value store.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Disk stores each key as one file under a base directory.
type Disk struct {
	d *diskv.Diskv
}

// NewDisk opens a store rooted at dir. A leading "~" is expanded to the
// user's home directory. The directory is created on first write.
func NewDisk(dir string) (*Disk, error) {
	base, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expand prefs dir %q: %w", dir, err)
	}
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:     base,
		CacheSizeMax: 1024,
	})}, nil
}

func (s *Disk) Get(key string) (string, bool, error) {
	if !s.d.Has(key) {
		return "", false, nil
	}
	val, err := s.d.Read(key)
	if err != nil {
		return "", false, fmt.Errorf("read pref %q: %w", key, err)
	}
	return string(val), true, nil
}

func (s *Disk) Set(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("write pref %q: %w", key, err)
	}
	return nil
}

// Memory is an in-process KV.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: map[string]string{}}
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
