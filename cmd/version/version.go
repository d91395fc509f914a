// Package version provides the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/rclone/driveclone/cmd"
	"github.com/rclone/driveclone/fs"
	"github.com/spf13/cobra"
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
}

var commandDefinition = &cobra.Command{
	Use:   "version",
	Short: `Show the version number.`,
	Long: `Show the driveclone version number, the go version and the build
target OS and architecture.

    $ driveclone version
    driveclone v0.1.0
    - os/type: linux
    - os/arch: amd64
    - go/version: go1.18
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 0, command, args)
		fmt.Printf("driveclone %s\n", fs.Version)
		fmt.Printf("- os/type: %s\n", runtime.GOOS)
		fmt.Printf("- os/arch: %s\n", runtime.GOARCH)
		fmt.Printf("- go/version: %s\n", runtime.Version())
	},
}
