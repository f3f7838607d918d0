package trackcache

import (
	"sync"

	"github.com/soundscroll/orpheus/internal/entities"
)

type syncTracks struct {
	mu sync.RWMutex
	m  map[string]*entities.Track
}

func (s *syncTracks) get(id string) (*entities.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.m[id]

	return t, ok
}

func (s *syncTracks) set(t *entities.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m == nil {
		s.m = make(map[string]*entities.Track)
	}

	s.m[t.ID] = t
}
