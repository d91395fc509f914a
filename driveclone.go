// Clone Google Drive folder trees with personalised names
package main

import (
	"github.com/rclone/driveclone/cmd"
	_ "github.com/rclone/driveclone/cmd/all" // import all commands
)

func main() {
	cmd.Main()
}
