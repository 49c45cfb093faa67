package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionsLifecycle(t *testing.T) {
	sessions := NewSessions()

	assert.Equal(t, Session{}, sessions.Get(1))

	sessions.Set(1, Session{Scene: SceneSearchByCode})
	assert.Equal(t, SceneSearchByCode, sessions.Get(1).Scene)
	assert.Equal(t, SceneIdle, sessions.Get(2).Scene)

	// A second wizard overwrites the first's state.
	sessions.Set(1, Session{Scene: SceneUploadMovie, Step: StepCode, Draft: &MovieDraft{}})
	assert.Equal(t, SceneUploadMovie, sessions.Get(1).Scene)
	assert.Equal(t, StepCode, sessions.Get(1).Step)

	sessions.Clear(1)
	assert.Equal(t, Session{}, sessions.Get(1))
}

func TestSessionsConcurrentAccess(t *testing.T) {
	sessions := NewSessions()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sessions.Set(id, Session{Scene: SceneSearchByCode})
			_ = sessions.Get(id)
			sessions.Clear(id)
		}(int64(i % 10))
	}
	wg.Wait()
}
