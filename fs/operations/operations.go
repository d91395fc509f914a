// Package operations does the writing operations of a clone on the
// remote
package operations

import (
	"context"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/lib/metrics"
	"github.com/rclone/driveclone/lib/pacer"
)

// Writer makes the changes to the remote with every call going
// through the pacer
type Writer struct {
	remote fs.Remote
	pacer  *pacer.Pacer
}

// NewWriter makes a Writer for remote which retries calls with p
func NewWriter(remote fs.Remote, p *pacer.Pacer) *Writer {
	return &Writer{
		remote: remote,
		pacer:  p,
	}
}

// Mkdir makes a folder called name in parentID, or in the storage
// root if parentID is empty
func (w *Writer) Mkdir(ctx context.Context, name, parentID string) (info *fs.Cloned, err error) {
	err = w.pacer.Call(ctx, func() (bool, error) {
		info, err = w.remote.CreateFolder(ctx, name, parentID)
		return fserrors.ShouldRetry(err), err
	})
	if err != nil {
		return nil, err
	}
	metrics.ItemsCreated.WithLabelValues(fs.KindFolder.String()).Inc()
	fs.Debugf(info, "Made folder in %q", parentID)
	return info, nil
}

// Copy makes a server side copy of srcID called name in parentID
func (w *Writer) Copy(ctx context.Context, srcID, name, parentID string) (info *fs.Cloned, err error) {
	err = w.pacer.Call(ctx, func() (bool, error) {
		info, err = w.remote.CopyFile(ctx, srcID, name, parentID)
		return fserrors.ShouldRetry(err), err
	})
	if err != nil {
		return nil, err
	}
	metrics.ItemsCreated.WithLabelValues(fs.KindFile.String()).Inc()
	fs.Debugf(info, "Copied from %q", srcID)
	return info, nil
}

// ShareWithAnyone lets anyone with the link access id with role
func (w *Writer) ShareWithAnyone(ctx context.Context, id string, role fs.Role) error {
	return w.pacer.Call(ctx, func() (bool, error) {
		err := w.remote.CreateAnyonePermission(ctx, id, role)
		return fserrors.ShouldRetry(err), err
	})
}

// SetWritersCanShare sets whether collaborators on id may share it
func (w *Writer) SetWritersCanShare(ctx context.Context, id string, allow bool) error {
	return w.pacer.Call(ctx, func() (bool, error) {
		err := w.remote.SetWritersCanShare(ctx, id, allow)
		return fserrors.ShouldRetry(err), err
	})
}

// ApplySharing applies the sharing part of the policy to rootID.
//
// The public grant is made first then collaborators are stopped from
// sharing further. Either step is skipped if the policy doesn't ask
// for it.
func ApplySharing(ctx context.Context, w *Writer, rootID string, p *fs.ClonePolicy) error {
	if p.AnyoneRole != fs.RoleNone {
		if err := w.ShareWithAnyone(ctx, rootID, p.AnyoneRole); err != nil {
			return fserrors.NodeError(rootID, err)
		}
		fs.Infof(rootID, "Anyone with the link can now %s", roleVerb(p.AnyoneRole))
	}
	if p.LockEditorsSharing {
		if err := w.SetWritersCanShare(ctx, rootID, false); err != nil {
			return fserrors.NodeError(rootID, err)
		}
		fs.Infof(rootID, "Editors can no longer share")
	}
	return nil
}

func roleVerb(role fs.Role) string {
	switch role {
	case fs.RoleWriter:
		return "edit"
	case fs.RoleCommenter:
		return "comment"
	}
	return "view"
}
