// Package resolve provides the resolve command.
package resolve

import (
	"fmt"

	"github.com/rclone/driveclone/cmd"
	"github.com/rclone/driveclone/fs/fspath"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "resolve reference",
	Short: `Print the ID in a folder or file link.`,
	Long: `
Resolve prints the ID found in reference, which may be a bare ID or a
link such as

    https://drive.google.com/drive/folders/ID
    https://drive.google.com/file/d/ID/view
    https://drive.google.com/open?id=ID

No remote calls are made.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(false, command, func() error {
			id, err := fspath.ResolveID(args[0])
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}
