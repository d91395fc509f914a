// Package clone copies a source folder tree into a new destination
// tree renaming items as it goes
package clone

import (
	"context"
	"errors"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/accounting"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/fs/list"
	"github.com/rclone/driveclone/fs/operations"
	"github.com/rclone/driveclone/lib/metrics"
	"github.com/rclone/driveclone/lib/pacer"
	"github.com/rclone/driveclone/lib/transform"
	"golang.org/x/sync/errgroup"
)

// Recorder is told about every item created by a clone.
//
// It may be called from more than one goroutine at once.
type Recorder interface {
	Record(src *fs.Node, dst *fs.Cloned, dstParentID string) error
}

// Options for a clone
type Options struct {
	Transfers int                  // number of file copies in flight, 1 for strictly sequential
	Recorder  Recorder             // optional
	Stats     *accounting.StatsInfo // optional - defaults to accounting.Stats
}

// NewOptions returns Options set from the config in ctx
func NewOptions(ctx context.Context) *Options {
	ci := fs.GetConfig(ctx)
	return &Options{
		Transfers: ci.Transfers,
		Stats:     accounting.Stats,
	}
}

// ancestors is an immutable chain of the IDs being cloned above the
// current item - the folders on the path plus any shortcuts being
// resolved. It is shared between goroutines so is never modified.
type ancestors struct {
	id     string
	parent *ancestors
}

// push returns a new chain with id on top
func (a *ancestors) push(id string) *ancestors {
	return &ancestors{id: id, parent: a}
}

// contains returns true if id is in the chain
func (a *ancestors) contains(id string) bool {
	for ; a != nil; a = a.parent {
		if a.id == id {
			return true
		}
	}
	return false
}

type cloner struct {
	r         *list.Reader
	w         *operations.Writer
	policy    *fs.ClonePolicy
	opt       Options
	tokens    *pacer.TokenDispenser
	newRootID string
}

// Clone copies the folder sourceRootID into a new folder made in
// policy.DestinationParentID and returns the new folder.
//
// Folders are made and walked depth first in listing order. Files
// are copied server side. Shortcuts are replaced by a copy of their
// target under the shortcut's name and dangling shortcuts are
// skipped.
//
// On error the partially made tree is left where it is.
func Clone(ctx context.Context, r *list.Reader, w *operations.Writer, sourceRootID string, policy *fs.ClonePolicy, opt *Options) (*fs.Cloned, error) {
	if opt == nil {
		opt = NewOptions(ctx)
	}
	c := &cloner{
		r:      r,
		w:      w,
		policy: policy,
		opt:    *opt,
	}
	if c.opt.Transfers < 1 {
		c.opt.Transfers = 1
	}
	if c.opt.Stats == nil {
		c.opt.Stats = accounting.Stats
	}
	c.tokens = pacer.NewTokenDispenser(c.opt.Transfers)

	root, err := r.GetNode(ctx, sourceRootID)
	if err != nil {
		return nil, err
	}
	if root.Kind != fs.KindFolder {
		return nil, fserrors.NodeError(root.ID, fserrors.ErrorNotAFolder)
	}
	dst, err := c.mkdir(ctx, root, transform.RootName(root.Name, policy), policy.DestinationParentID)
	if err != nil {
		return nil, err
	}
	c.newRootID = dst.ID
	fs.Infof(root, "Cloning into %v", dst)
	err = c.cloneFolder(ctx, root.ID, dst.ID, (*ancestors)(nil).push(root.ID))
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// record tells the Recorder about a created item
func (c *cloner) record(src *fs.Node, dst *fs.Cloned, dstParentID string) {
	if c.opt.Recorder == nil {
		return
	}
	if err := c.opt.Recorder.Record(src, dst, dstParentID); err != nil {
		fs.Errorf(src, "Failed to record clone: %v", err)
	}
}

// mkdir makes the copy of folder src called name in dstParentID
func (c *cloner) mkdir(ctx context.Context, src *fs.Node, name, dstParentID string) (*fs.Cloned, error) {
	dst, err := c.w.Mkdir(ctx, name, dstParentID)
	if err != nil {
		return nil, fserrors.NodeError(src.ID, err)
	}
	c.opt.Stats.Folder()
	c.record(src, dst, dstParentID)
	return dst, nil
}

// copyFile copies the file src as name into dstParentID
func (c *cloner) copyFile(ctx context.Context, src *fs.Node, name, dstParentID string) error {
	dst, err := c.w.Copy(ctx, src.ID, name, dstParentID)
	if err != nil {
		return fserrors.NodeError(src.ID, err)
	}
	c.opt.Stats.File()
	c.record(src, dst, dstParentID)
	return nil
}

// cloneFolder clones the children of srcID into dstID
func (c *cloner) cloneFolder(ctx context.Context, srcID, dstID string, chain *ancestors) (err error) {
	var g *errgroup.Group
	if c.opt.Transfers > 1 {
		g, ctx = errgroup.WithContext(ctx)
	}
	children := c.r.Children(ctx, srcID)
	for children.Next() {
		if err = ctx.Err(); err != nil {
			break
		}
		node := children.Node()
		if err = c.cloneNode(ctx, g, node, node.Name, dstID, chain); err != nil {
			break
		}
	}
	if err == nil {
		err = children.Err()
	}
	if g != nil {
		waitErr := g.Wait()
		if waitErr != nil && (err == nil || errors.Is(err, context.Canceled)) {
			err = waitErr
		}
	}
	return err
}

// cloneNode clones a single node into dstParentID using name as the
// source name to render. name differs from node.Name when node is
// the target of a shortcut.
//
// If g is set file copies are run in it.
func (c *cloner) cloneNode(ctx context.Context, g *errgroup.Group, node *fs.Node, name, dstParentID string, chain *ancestors) error {
	if node.ID == c.newRootID {
		fs.Logf(node, "Not cloning the destination into itself")
		return nil
	}
	if chain.contains(node.ID) {
		return fserrors.NodeError(node.ID, fserrors.ErrorCyclicStructure)
	}
	newName := transform.ChildName(name, c.policy)
	switch node.Kind {
	case fs.KindFolder:
		dst, err := c.mkdir(ctx, node, newName, dstParentID)
		if err != nil {
			return err
		}
		return c.cloneFolder(ctx, node.ID, dst.ID, chain.push(node.ID))
	case fs.KindShortcut:
		if node.IsDangling() {
			fs.Logf(node, "Skipping shortcut with no target")
			c.opt.Stats.SkippedShortcut()
			metrics.ShortcutsSkipped.Inc()
			return nil
		}
		target, err := c.r.GetNode(ctx, node.ShortcutTargetID)
		if err != nil {
			return fserrors.NodeError(node.ID, err)
		}
		fs.Debugf(node, "Following shortcut to %v", target)
		c.opt.Stats.FollowedShortcut()
		return c.cloneNode(ctx, g, target, name, dstParentID, chain.push(node.ID))
	}
	if g == nil {
		return c.copyFile(ctx, node, newName, dstParentID)
	}
	if err := c.tokens.Get(ctx); err != nil {
		return err
	}
	g.Go(func() error {
		defer c.tokens.Put()
		return c.copyFile(ctx, node, newName, dstParentID)
	})
	return nil
}
