// Package mockremote provides an in memory fs.Remote for testing
package mockremote

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
)

// Names of the methods recorded in the call log
const (
	MethodGetNode                = "GetNode"
	MethodListPage               = "ListPage"
	MethodCreateFolder           = "CreateFolder"
	MethodCopyFile               = "CopyFile"
	MethodCreateAnyonePermission = "CreateAnyonePermission"
	MethodSetWritersCanShare     = "SetWritersCanShare"
)

// RootID is the parent of items made without a parent
const RootID = "root"

// Item is an item stored in the Remote
type Item struct {
	ID               string
	Name             string
	Kind             fs.Kind
	Parent           string
	ShortcutTargetID string
	CopiedFrom       string  // source ID if made by CopyFile
	Created          bool    // made through the fs.Remote interface
	AnyoneRole       fs.Role // role granted to anyone with the link
	WritersCanShare  bool
}

// Call is an entry in the call log
type Call struct {
	Method string
	Arg    string // the ID the call was about
}

// String returns the call as "Method(Arg)"
func (c Call) String() string {
	return c.Method + "(" + c.Arg + ")"
}

// Hook is called before every call. If it returns an error the call
// fails with it.
type Hook func(ctx context.Context, c Call) error

type failure struct {
	method string
	arg    string
	n      int
	err    error
}

// Remote is an in memory fs.Remote.
//
// It is safe for concurrent use.
type Remote struct {
	mu       sync.Mutex
	items    map[string]*Item
	children map[string][]string // parent ID to child IDs in creation order
	calls    []Call
	failures []*failure
	hook     Hook
	nextID   int
	// PageSize is the number of children returned by each ListPage
	PageSize int
}

// New makes an empty Remote
func New() *Remote {
	return &Remote{
		items:    map[string]*Item{},
		children: map[string][]string{},
		PageSize: 1000,
	}
}

func (r *Remote) add(item *Item) *Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(item)
}

func (r *Remote) addLocked(item *Item) *Item {
	if item.Parent == "" {
		item.Parent = RootID
	}
	item.WritersCanShare = true
	r.items[item.ID] = item
	r.children[item.Parent] = append(r.children[item.Parent], item.ID)
	return item
}

// AddFolder adds a folder to the source tree
func (r *Remote) AddFolder(id, name, parent string) *Item {
	return r.add(&Item{ID: id, Name: name, Kind: fs.KindFolder, Parent: parent})
}

// AddFile adds a file to the source tree
func (r *Remote) AddFile(id, name, parent string) *Item {
	return r.add(&Item{ID: id, Name: name, Kind: fs.KindFile, Parent: parent})
}

// AddShortcut adds a shortcut to target. An empty target makes a
// dangling shortcut.
func (r *Remote) AddShortcut(id, name, parent, target string) *Item {
	return r.add(&Item{ID: id, Name: name, Kind: fs.KindShortcut, Parent: parent, ShortcutTargetID: target})
}

// Fail makes the next n calls of method fail with err. If arg is
// not empty only calls about that ID count.
func (r *Remote) Fail(method, arg string, n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, &failure{method: method, arg: arg, n: n, err: err})
}

// FailStatus makes the next n calls of method fail with the HTTP status code
func (r *Remote) FailStatus(method, arg string, n int, code int) {
	r.Fail(method, arg, n, fserrors.NewStatusError(code, errors.Errorf("injected %d", code)))
}

// SetHook installs a function called before every call
func (r *Remote) SetHook(hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

// begin logs the call and returns an injected error if there is one.
//
// Call with the mutex held.
func (r *Remote) begin(ctx context.Context, method, arg string) error {
	c := Call{Method: method, Arg: arg}
	r.calls = append(r.calls, c)
	if r.hook != nil {
		hook := r.hook
		r.mu.Unlock()
		err := hook(ctx, c)
		r.mu.Lock()
		if err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, f := range r.failures {
		if f.n <= 0 || f.method != method || (f.arg != "" && f.arg != arg) {
			continue
		}
		f.n--
		return f.err
	}
	return nil
}

func notFound(id string) error {
	return fserrors.NewStatusError(http.StatusNotFound, errors.Errorf("file not found: %s", id))
}

func toNode(item *Item) *fs.Node {
	node := &fs.Node{
		ID:               item.ID,
		Name:             item.Name,
		Kind:             item.Kind,
		ShortcutTargetID: item.ShortcutTargetID,
	}
	if item.Kind == fs.KindFolder {
		node.ViewLink = "https://drive.google.com/drive/folders/" + item.ID
	} else {
		node.ViewLink = "https://drive.google.com/file/d/" + item.ID + "/view"
	}
	return node
}

// GetNode fetches the metadata of a single item
func (r *Remote) GetNode(ctx context.Context, id string) (*fs.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, MethodGetNode, id); err != nil {
		return nil, err
	}
	item, ok := r.items[id]
	if !ok {
		return nil, notFound(id)
	}
	return toNode(item), nil
}

// ListPage fetches one page of the children of parentID
func (r *Remote) ListPage(ctx context.Context, parentID, pageToken string) (*fs.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, MethodListPage, parentID); err != nil {
		return nil, err
	}
	if _, ok := r.items[parentID]; !ok && parentID != RootID {
		return nil, notFound(parentID)
	}
	start := 0
	if pageToken != "" {
		var err error
		start, err = strconv.Atoi(pageToken)
		if err != nil {
			return nil, fserrors.NewStatusError(http.StatusBadRequest, errors.Errorf("bad page token %q", pageToken))
		}
	}
	ids := r.children[parentID]
	pageSize := r.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}
	page := &fs.Page{}
	for _, id := range ids[start:end] {
		page.Nodes = append(page.Nodes, toNode(r.items[id]))
	}
	if end < len(ids) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (r *Remote) newID() string {
	r.nextID++
	return fmt.Sprintf("new-%d", r.nextID)
}

func (r *Remote) checkParent(parentID string) error {
	if parentID == "" || parentID == RootID {
		return nil
	}
	parent, ok := r.items[parentID]
	if !ok {
		return notFound(parentID)
	}
	if parent.Kind != fs.KindFolder {
		return fserrors.NewStatusError(http.StatusBadRequest, errors.Errorf("parent %s is not a folder", parentID))
	}
	return nil
}

// CreateFolder makes a folder called name in parentID
func (r *Remote) CreateFolder(ctx context.Context, name, parentID string) (*fs.Cloned, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, MethodCreateFolder, parentID); err != nil {
		return nil, err
	}
	if err := r.checkParent(parentID); err != nil {
		return nil, err
	}
	item := r.addLocked(&Item{ID: r.newID(), Name: name, Kind: fs.KindFolder, Parent: parentID, Created: true})
	node := toNode(item)
	return &fs.Cloned{ID: node.ID, Name: node.Name, ViewLink: node.ViewLink}, nil
}

// CopyFile makes a copy of srcID called name in parentID
func (r *Remote) CopyFile(ctx context.Context, srcID, name, parentID string) (*fs.Cloned, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, MethodCopyFile, srcID); err != nil {
		return nil, err
	}
	src, ok := r.items[srcID]
	if !ok {
		return nil, notFound(srcID)
	}
	if src.Kind == fs.KindFolder {
		return nil, fserrors.NewStatusError(http.StatusBadRequest, errors.Errorf("can't copy folder %s", srcID))
	}
	if err := r.checkParent(parentID); err != nil {
		return nil, err
	}
	item := r.addLocked(&Item{
		ID:               r.newID(),
		Name:             name,
		Kind:             src.Kind,
		Parent:           parentID,
		ShortcutTargetID: src.ShortcutTargetID,
		CopiedFrom:       srcID,
		Created:          true,
	})
	node := toNode(item)
	return &fs.Cloned{ID: node.ID, Name: node.Name, ViewLink: node.ViewLink}, nil
}

// CreateAnyonePermission grants anyone with the link role on id
func (r *Remote) CreateAnyonePermission(ctx context.Context, id string, role fs.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, MethodCreateAnyonePermission, id); err != nil {
		return err
	}
	item, ok := r.items[id]
	if !ok {
		return notFound(id)
	}
	item.AnyoneRole = role
	return nil
}

// SetWritersCanShare sets whether collaborators may share id further
func (r *Remote) SetWritersCanShare(ctx context.Context, id string, allow bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, MethodSetWritersCanShare, id); err != nil {
		return err
	}
	item, ok := r.items[id]
	if !ok {
		return notFound(id)
	}
	item.WritersCanShare = allow
	return nil
}

// Item returns a copy of the item with id or nil
func (r *Remote) Item(id string) *Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil
	}
	itemCopy := *item
	return &itemCopy
}

// Calls returns a copy of the call log
func (r *Remote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CountCalls returns the number of calls of method made
func (r *Remote) CountCalls(method string) (n int) {
	for _, c := range r.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Created returns the items made through the fs.Remote interface
// in creation order
func (r *Remote) Created() (items []*Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, item := range r.items {
		if item.Created {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(ids[i], "new-"))
		b, _ := strconv.Atoi(strings.TrimPrefix(ids[j], "new-"))
		return a < b
	})
	for _, id := range ids {
		itemCopy := *r.items[id]
		items = append(items, &itemCopy)
	}
	return items
}

// Tree returns the sorted paths of everything below id. Folders end
// in "/" and files copied from another item are followed by
// " <- source".
func (r *Remote) Tree(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var paths []string
	var walk func(parent, prefix string)
	walk = func(parent, prefix string) {
		for _, childID := range r.children[parent] {
			item := r.items[childID]
			path := prefix + item.Name
			switch {
			case item.Kind == fs.KindFolder:
				paths = append(paths, path+"/")
				walk(childID, path+"/")
			case item.CopiedFrom != "":
				paths = append(paths, path+" <- "+item.CopiedFrom)
			default:
				paths = append(paths, path)
			}
		}
	}
	walk(id, "")
	sort.Strings(paths)
	return paths
}

// check interfaces
var _ fs.Remote = (*Remote)(nil)
