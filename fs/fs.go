// Package fs is a generic interface to a remote tree of folders,
// files and shortcuts which can be cloned.
package fs

import (
	"context"
	"fmt"
)

// Mime types which have a special meaning to the remote
const (
	FolderMimeType   = "application/vnd.google-apps.folder"
	ShortcutMimeType = "application/vnd.google-apps.shortcut"
)

// Kind describes what sort of item a Node is
type Kind int

// Kinds of Node
const (
	KindFile Kind = iota // a leaf item, including native documents
	KindFolder
	KindShortcut
)

var kindToString = []string{
	KindFile:     "file",
	KindFolder:   "folder",
	KindShortcut: "shortcut",
}

// String turns a Kind into a string
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindToString) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindToString[k]
}

// KindFromMimeType returns the Kind for the mime type passed in
func KindFromMimeType(mimeType string) Kind {
	switch mimeType {
	case FolderMimeType:
		return KindFolder
	case ShortcutMimeType:
		return KindShortcut
	}
	return KindFile
}

// Node is one item in the source tree as read from the remote.
//
// It is a read only snapshot and is fetched again when needed.
type Node struct {
	ID               string // opaque identifier
	Name             string // display name
	Kind             Kind   // folder, file or shortcut
	ShortcutTargetID string // only for KindShortcut - empty means dangling
	ViewLink         string // link to the item if the remote returned one
}

// String returns a description of the Node for logging
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q (%s)", n.Kind, n.Name, n.ID)
}

// IsDangling returns true if the Node is a shortcut without a target
func (n *Node) IsDangling() bool {
	return n.Kind == KindShortcut && n.ShortcutTargetID == ""
}

// Cloned is the result of creating or copying a single item
type Cloned struct {
	ID       string
	Name     string
	ViewLink string
}

// String returns a description of the Cloned item for logging
func (c *Cloned) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q (%s)", c.Name, c.ID)
}

// Page is one page of a children listing
type Page struct {
	Nodes         []*Node
	NextPageToken string // empty when there are no more pages
}

// Remote is the set of calls the clone engine makes to the storage
// API.
//
// Each method is exactly one remote call - retries are done by the
// caller. Errors returned should carry the remote status with a
// fserrors.StatusError so that they can be classified.
type Remote interface {
	// GetNode fetches the metadata of a single item
	GetNode(ctx context.Context, id string) (*Node, error)

	// ListPage fetches one page of the children of parentID.
	// pageToken is empty for the first page.
	ListPage(ctx context.Context, parentID, pageToken string) (*Page, error)

	// CreateFolder makes a folder called name. If parentID is
	// empty it is made at the storage root.
	CreateFolder(ctx context.Context, name, parentID string) (*Cloned, error)

	// CopyFile makes a server side copy of srcID called name in parentID
	CopyFile(ctx context.Context, srcID, name, parentID string) (*Cloned, error)

	// CreateAnyonePermission grants anyone with the link role on id
	// without making it discoverable
	CreateAnyonePermission(ctx context.Context, id string, role Role) error

	// SetWritersCanShare sets whether collaborators may share id further
	SetWritersCanShare(ctx context.Context, id string, allow bool) error
}
