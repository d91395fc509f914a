package operations

import (
	"context"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/list"
	"github.com/rclone/driveclone/lib/transform"
)

// FindPlaceholders walks the tree below rootID depth first and
// returns every item whose name still contains token.
//
// The root itself is not checked. Shortcuts are not followed.
func FindPlaceholders(ctx context.Context, r *list.Reader, rootID, token string) (found []*fs.Node, err error) {
	var walk func(folderID string) error
	walk = func(folderID string) error {
		children := r.Children(ctx, folderID)
		for children.Next() {
			node := children.Node()
			if transform.Contains(node.Name, token) {
				fs.Logf(node, "Name still contains %q", token)
				found = append(found, node)
			}
			if node.Kind == fs.KindFolder {
				if err := walk(node.ID); err != nil {
					return err
				}
			}
		}
		return children.Err()
	}
	err = walk(rootID)
	return found, err
}
