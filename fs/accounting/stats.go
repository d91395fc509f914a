// Package accounting keeps count of the work done by a clone run
package accounting

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/rclone/driveclone/fs"
)

var (
	// Stats is global statistics counter
	Stats = NewStats()
)

func init() {
	// Set the function pointer up in fs
	fs.CountError = Stats.Error
}

// StatsInfo accounts the items cloned
type StatsInfo struct {
	lock              sync.RWMutex
	folders           int64
	files             int64
	shortcutsFollowed int64
	shortcutsSkipped  int64
	errors            int64
	lastError         error
	start             time.Time
}

// NewStats creates an initialised StatsInfo
func NewStats() *StatsInfo {
	return &StatsInfo{
		start: time.Now(),
	}
}

// String convert the StatsInfo to a string for printing
func (s *StatsInfo) String() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	dt := time.Since(s.start)
	dtRounded := dt - (dt % (time.Second / 10))
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `
Folders:       %10d
Files:         %10d
Shortcuts:     %10d followed, %d skipped
Errors:        %10d
Elapsed time:  %10v
`,
		s.folders,
		s.files,
		s.shortcutsFollowed, s.shortcutsSkipped,
		s.errors,
		dtRounded)
	return buf.String()
}

// Log outputs the StatsInfo to the log
func (s *StatsInfo) Log() {
	fs.LogLevelPrintf(fs.LogLevelNotice, nil, "%v\n", s)
}

// Folder counts a created folder
func (s *StatsInfo) Folder() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.folders++
}

// File counts a copied file
func (s *StatsInfo) File() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.files++
}

// FollowedShortcut counts a shortcut which was resolved
func (s *StatsInfo) FollowedShortcut() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.shortcutsFollowed++
}

// SkippedShortcut counts a dangling shortcut
func (s *StatsInfo) SkippedShortcut() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.shortcutsSkipped++
}

// GetFolders returns the number of folders created
func (s *StatsInfo) GetFolders() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.folders
}

// GetFiles returns the number of files copied
func (s *StatsInfo) GetFiles() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.files
}

// GetShortcuts returns the number of shortcuts followed and skipped
func (s *StatsInfo) GetShortcuts() (followed, skipped int64) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.shortcutsFollowed, s.shortcutsSkipped
}

// GetErrors reads the number of errors
func (s *StatsInfo) GetErrors() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.errors
}

// GetLastError returns the lastError
func (s *StatsInfo) GetLastError() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.lastError
}

// Errored returns whether there have been any errors
func (s *StatsInfo) Errored() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.errors != 0
}

// Error adds a single error into the stats and assigns lastError
func (s *StatsInfo) Error(err error) error {
	if err == nil {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.errors++
	s.lastError = err
	return err
}

// ResetCounters sets the counters to 0 and restarts the clock
func (s *StatsInfo) ResetCounters() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.folders = 0
	s.files = 0
	s.shortcutsFollowed = 0
	s.shortcutsSkipped = 0
	s.errors = 0
	s.lastError = nil
	s.start = time.Now()
}
