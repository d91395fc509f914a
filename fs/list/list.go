// Package list reads the source tree from the remote a page at a time
package list

import (
	"context"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/lib/pacer"
)

// Reader reads items and listings from the remote with every call
// going through the pacer
type Reader struct {
	remote fs.Remote
	pacer  *pacer.Pacer
}

// NewReader makes a Reader for remote which retries calls with p
func NewReader(remote fs.Remote, p *pacer.Pacer) *Reader {
	return &Reader{
		remote: remote,
		pacer:  p,
	}
}

// Remote returns the remote the Reader reads from
func (r *Reader) Remote() fs.Remote {
	return r.remote
}

// Pacer returns the pacer used for calls
func (r *Reader) Pacer() *pacer.Pacer {
	return r.pacer
}

// GetNode reads the metadata of a single item
func (r *Reader) GetNode(ctx context.Context, id string) (node *fs.Node, err error) {
	err = r.pacer.Call(ctx, func() (bool, error) {
		node, err = r.remote.GetNode(ctx, id)
		return fserrors.ShouldRetry(err), err
	})
	if err != nil {
		return nil, fserrors.NodeError(id, err)
	}
	return node, nil
}

// Children returns an iterator over the children of parentID.
//
// Nothing is read until Next is called.
func (r *Reader) Children(ctx context.Context, parentID string) *Children {
	return &Children{
		ctx:      ctx,
		reader:   r,
		parentID: parentID,
	}
}

// All reads every child of parentID
func (r *Reader) All(ctx context.Context, parentID string) (nodes []*fs.Node, err error) {
	children := r.Children(ctx, parentID)
	for children.Next() {
		nodes = append(nodes, children.Node())
	}
	return nodes, children.Err()
}

// Children iterates the children of a folder, reading one page at a
// time as needed.
//
//	children := r.Children(ctx, id)
//	for children.Next() {
//		node := children.Node()
//		...
//	}
//	if err := children.Err(); err != nil {
//		...
//	}
//
// A failed page stops the iteration. The nodes already returned stay
// valid and Err reports the failure.
type Children struct {
	ctx       context.Context
	reader    *Reader
	parentID  string
	page      []*fs.Node
	index     int
	pageToken string
	started   bool
	done      bool
	node      *fs.Node
	err       error
	pages     int
}

// Next advances to the next child returning false when there are no
// more or there was an error
func (c *Children) Next() bool {
	c.node = nil
	for c.index >= len(c.page) {
		if c.done || c.err != nil {
			return false
		}
		if c.started && c.pageToken == "" {
			c.done = true
			return false
		}
		c.readPage()
	}
	c.node = c.page[c.index]
	c.index++
	return true
}

// readPage reads the next page of children
func (c *Children) readPage() {
	var page *fs.Page
	pageToken := c.pageToken
	err := c.reader.pacer.Call(c.ctx, func() (bool, error) {
		var err error
		page, err = c.reader.remote.ListPage(c.ctx, c.parentID, pageToken)
		return fserrors.ShouldRetry(err), err
	})
	c.started = true
	if err != nil {
		c.err = fserrors.NodeError(c.parentID, err)
		c.page = nil
		c.index = 0
		return
	}
	c.pages++
	c.page = page.Nodes
	c.index = 0
	c.pageToken = page.NextPageToken
	if c.pageToken == "" && len(c.page) == 0 {
		c.done = true
	}
	fs.Debugf(c.parentID, "Read page %d with %d items", c.pages, len(c.page))
}

// Node returns the current child set by the last call to Next
func (c *Children) Node() *fs.Node {
	return c.node
}

// Err returns the error which stopped the iteration if any
func (c *Children) Err() error {
	return c.err
}

// Reset makes the iterator start again from the first page on the
// next call of Next
func (c *Children) Reset() {
	c.page = nil
	c.index = 0
	c.pageToken = ""
	c.started = false
	c.done = false
	c.node = nil
	c.err = nil
	c.pages = 0
}
