package accounting

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsCounters(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Folder()
			s.File()
			s.File()
		}()
	}
	wg.Wait()
	s.FollowedShortcut()
	s.SkippedShortcut()
	s.SkippedShortcut()
	assert.Equal(t, int64(10), s.GetFolders())
	assert.Equal(t, int64(20), s.GetFiles())
	followed, skipped := s.GetShortcuts()
	assert.Equal(t, int64(1), followed)
	assert.Equal(t, int64(2), skipped)
	assert.Regexp(t, `Folders:\s+10\n`, s.String())

	s.ResetCounters()
	assert.Equal(t, int64(0), s.GetFolders())
	assert.Equal(t, int64(0), s.GetFiles())
}

func TestStatsErrors(t *testing.T) {
	s := NewStats()
	assert.False(t, s.Errored())
	assert.NoError(t, s.Error(nil))
	assert.False(t, s.Errored())

	err1 := errors.New("one")
	err2 := errors.New("two")
	assert.Equal(t, err1, s.Error(err1))
	assert.Equal(t, err2, s.Error(err2))
	assert.True(t, s.Errored())
	assert.Equal(t, int64(2), s.GetErrors())
	assert.Equal(t, err2, s.GetLastError())
}
