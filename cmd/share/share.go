// Package share provides the share command.
package share

import (
	"context"
	"fmt"

	"github.com/rclone/driveclone/cmd"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fspath"
	"github.com/rclone/driveclone/fs/list"
	"github.com/rclone/driveclone/fs/operations"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmd.AddPolicyFlags(commandDefinition.Flags())
}

var commandDefinition = &cobra.Command{
	Use:   "share folder",
	Short: `Apply the sharing policy to an existing folder.`,
	Long: `
Share grants --anyone-role to anyone with the link to folder and, if
--lock-editors-sharing is set, stops editors sharing it further. This
is what clone does to the root it makes, so it can be used to retry
the last step of a clone which failed while sharing.

The folder link is printed on success.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(false, command, func() error {
			ctx, cancel := cmd.Context()
			defer cancel()
			policy, err := cmd.NewPolicy(command.Flags(), "")
			if err != nil {
				return err
			}
			f, err := cmd.NewFs(ctx)
			if err != nil {
				return err
			}
			r, w := cmd.NewReaderWriter(ctx, f)
			node, err := share(ctx, r, w, args[0], policy)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\n", node.Name, node.ViewLink)
			return nil
		})
	},
}

// share applies policy to folder and returns it as it is afterwards
func share(ctx context.Context, r *list.Reader, w *operations.Writer, folder string, policy *fs.ClonePolicy) (*fs.Node, error) {
	id, err := fspath.ResolveID(folder)
	if err != nil {
		return nil, err
	}
	if err = operations.ApplySharing(ctx, w, id, policy); err != nil {
		return nil, err
	}
	return r.GetNode(ctx, id)
}
