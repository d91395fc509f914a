// Package all imports all the commands
package all

import (
	// Active commands
	_ "github.com/rclone/driveclone/cmd"
	_ "github.com/rclone/driveclone/cmd/clone"
	_ "github.com/rclone/driveclone/cmd/journal"
	_ "github.com/rclone/driveclone/cmd/resolve"
	_ "github.com/rclone/driveclone/cmd/share"
	_ "github.com/rclone/driveclone/cmd/verify"
	_ "github.com/rclone/driveclone/cmd/version"
)
