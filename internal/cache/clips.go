package cache

import (
	"time"

	"github.com/google/uuid"
)

// Clip is a synthesized narration kept around long enough for a client
// to fetch and play it.
type Clip struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// ClipStore hands out opaque ids for narration clips.
type ClipStore struct {
	lru *LRUCache[Clip]
	now func() time.Time
}

func NewClipStore(maxSize int, ttl time.Duration) *ClipStore {
	return &ClipStore{
		lru: NewLRUCache[Clip](maxSize, ttl),
		now: time.Now,
	}
}

// WithClock replaces the time source for both stamping and expiry.
func (s *ClipStore) WithClock(now func() time.Time) *ClipStore {
	s.now = now
	s.lru.WithClock(now)
	return s
}

// Put stores the audio and returns the id it can be fetched under.
func (s *ClipStore) Put(contentType string, data []byte) Clip {
	clip := Clip{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Data:        data,
		CreatedAt:   s.now(),
	}
	s.lru.Set(clip.ID, clip)
	return clip
}

func (s *ClipStore) Get(id string) (Clip, bool) {
	return s.lru.Get(id)
}

// Release drops a clip before its ttl runs out.
func (s *ClipStore) Release(id string) {
	s.lru.Delete(id)
}

func (s *ClipStore) Size() int {
	return s.lru.Size()
}

func (s *ClipStore) CleanExpired() int {
	return s.lru.CleanExpired()
}

// Evictions counts clips dropped for capacity or age.
func (s *ClipStore) Evictions() int64 {
	return s.lru.Evictions()
}
