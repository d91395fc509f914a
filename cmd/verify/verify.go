// Package verify provides the verify command.
package verify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/cmd"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/config/flags"
	"github.com/rclone/driveclone/fs/fspath"
	"github.com/rclone/driveclone/fs/list"
	"github.com/rclone/driveclone/fs/operations"
	"github.com/spf13/cobra"
)

var placeholder = fs.DefaultPlaceholder

// ErrorPlaceholderLeft is returned when names below the folder still
// contain the placeholder
var ErrorPlaceholderLeft = errors.New("placeholder left in names")

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.StringVarP(cmdFlags, &placeholder, "placeholder", "", placeholder, "Token to look for")
}

var commandDefinition = &cobra.Command{
	Use:   "verify folder",
	Short: `List items whose names still contain the placeholder.`,
	Long: `
Verify walks the tree below folder, given as an ID or a link, and
prints the kind, ID and name of every item whose name still contains
the placeholder. Shortcuts are not followed.

Use it on a clone to check every name was substituted. The exit
status is non-zero if any item was found.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(false, command, func() error {
			ctx, cancel := cmd.Context()
			defer cancel()
			f, err := cmd.NewFs(ctx)
			if err != nil {
				return err
			}
			r, _ := cmd.NewReaderWriter(ctx, f)
			return verify(ctx, r, args[0], placeholder, os.Stdout)
		})
	},
}

// verify writes the items below folder still containing token to out
func verify(ctx context.Context, r *list.Reader, folder, token string, out io.Writer) error {
	id, err := fspath.ResolveID(folder)
	if err != nil {
		return err
	}
	found, err := operations.FindPlaceholders(ctx, r, id, token)
	if err != nil {
		return err
	}
	for _, node := range found {
		_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", node.Kind, node.ID, node.Name)
	}
	if len(found) > 0 {
		return errors.Wrapf(ErrorPlaceholderLeft, "%d items still contain %q", len(found), token)
	}
	fs.Infof(nil, "no items contain %q", token)
	return nil
}
