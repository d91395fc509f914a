// Package fspath contains routines for turning references to items
// on the remote into IDs
package fspath

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs/fserrors"
)

const idRe = `[A-Za-z0-9_-]`

var (
	// bareIDMatcher matches a reference which is just an ID
	bareIDMatcher = regexp.MustCompile(`^` + idRe + `{20,}$`)

	// urlMatchers match the ID in the URL shapes the remote hands
	// out. The first one to match wins.
	urlMatchers = []*regexp.Regexp{
		regexp.MustCompile(`/folders/(` + idRe + `+)`),
		regexp.MustCompile(`/file/d/(` + idRe + `+)`),
		regexp.MustCompile(`[?&]id=(` + idRe + `+)`),
	}
)

// ResolveID extracts the ID of an item from raw which may be a bare
// ID or a URL pointing at a folder or a file.
//
// It returns an error wrapping fserrors.ErrorInvalidReference if no
// ID could be found.
func ResolveID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if bareIDMatcher.MatchString(s) {
		return s, nil
	}
	for _, matcher := range urlMatchers {
		if m := matcher.FindStringSubmatch(s); m != nil {
			return m[1], nil
		}
	}
	return "", errors.Wrapf(fserrors.ErrorInvalidReference, "%q", raw)
}

// FolderURL returns the URL a user would open to see folder id
func FolderURL(id string) string {
	return "https://drive.google.com/drive/folders/" + id
}
