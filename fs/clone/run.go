package clone

import (
	"context"
	"strings"
	"time"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fspath"
	"github.com/rclone/driveclone/fs/list"
	"github.com/rclone/driveclone/fs/operations"
	"github.com/rclone/driveclone/lib/metrics"
)

// Run does a complete clone of source which may be a folder ID or a
// link to a folder.
//
// It resolves the source, clones the tree, applies the sharing policy
// to the new root and then reads the new root again so the link
// returned reflects the final state.
func Run(ctx context.Context, r *list.Reader, w *operations.Writer, source string, policy *fs.ClonePolicy, opt *Options) (cloned *fs.Cloned, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveRun(time.Since(start).Seconds(), err)
	}()
	if err = policy.Validate(); err != nil {
		return nil, err
	}
	p := *policy
	p.SubstitutionValue = strings.TrimSpace(p.SubstitutionValue)

	sourceID, err := fspath.ResolveID(source)
	if err != nil {
		return nil, err
	}
	dst, err := Clone(ctx, r, w, sourceID, &p, opt)
	if err != nil {
		return nil, err
	}
	if err = operations.ApplySharing(ctx, w, dst.ID, &p); err != nil {
		return nil, err
	}
	root, err := r.GetNode(ctx, dst.ID)
	if err != nil {
		return nil, err
	}
	fs.Infof(root, "Clone finished")
	return &fs.Cloned{
		ID:       root.ID,
		Name:     root.Name,
		ViewLink: root.ViewLink,
	}, nil
}
