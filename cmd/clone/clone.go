// Package clone provides the clone command.
package clone

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/cmd"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/clone"
	"github.com/rclone/driveclone/fs/config/configfile"
	"github.com/rclone/driveclone/fs/config/configstruct"
	"github.com/rclone/driveclone/fs/config/flags"
	"github.com/rclone/driveclone/fs/fshttp"
	"github.com/rclone/driveclone/fs/list"
	"github.com/rclone/driveclone/fs/operations"
	"github.com/rclone/driveclone/lib/notify"
	"github.com/rclone/driveclone/lib/oauthutil"
	"github.com/spf13/cobra"
)

var (
	email  string
	verify bool
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	cmd.AddPolicyFlags(cmdFlags)
	flags.StringVarP(cmdFlags, &email, "email", "", email, "Send a message with the link to this address")
	flags.BoolVarP(cmdFlags, &verify, "verify", "", verify, "Check no names in the new tree still contain the placeholder")
}

var commandDefinition = &cobra.Command{
	Use:   "clone source [full name]",
	Short: `Clone a folder tree replacing the placeholder with full name.`,
	Long: `
Clone copies the folder source, given as an ID or a link, into a new
folder. Every folder, file and shortcut target in source is copied
with the placeholder in its name replaced by full name.

The new folder is named from --root-name-template and is made in
--destination-parent or in My Drive. After copying, anyone with the
link is granted --anyone-role and editors are stopped from sharing
further if --lock-editors-sharing is set.

The name and link of the new folder are printed on success.

    driveclone clone https://drive.google.com/drive/folders/1AbC... "Jan Kowalski"

If --email is given the link is sent to that address using the
message in the email section of the config.

A partially made tree is not removed on failure. Use "driveclone
journal" to find it.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 2, command, args)
		fullName := ""
		if len(args) > 1 {
			fullName = strings.TrimSpace(args[1])
		}
		cmd.Run(true, command, func() error {
			ctx, cancel := cmd.Context()
			defer cancel()
			return run(ctx, command, args[0], fullName)
		})
	},
}

func run(ctx context.Context, command *cobra.Command, source, fullName string) error {
	policy, err := cmd.NewPolicy(command.Flags(), fullName)
	if err != nil {
		return err
	}
	var sender notify.Sender
	var notifyOpt notify.Options
	if email != "" {
		if !notify.ValidFullName(fullName) {
			return errors.Errorf("%q doesn't look like a full name", fullName)
		}
		if !notify.ValidEmail(email) {
			return errors.Errorf("%q doesn't look like an email address", email)
		}
		notifyOpt = notify.DefaultOptions()
		if err = configstruct.Set(cmd.Mapper(configfile.SectionEmail, nil), &notifyOpt); err != nil {
			return err
		}
		sender, err = newSender(ctx, &notifyOpt)
		if err != nil {
			return err
		}
	}

	f, err := cmd.NewFs(ctx)
	if err != nil {
		return err
	}
	r, w := cmd.NewReaderWriter(ctx, f)
	cloned, err := cloneWithJournal(ctx, r, w, source, policy)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n", cloned.Name, cloned.ViewLink)

	if verify && policy.Substituting() {
		left, err := operations.FindPlaceholders(ctx, r, cloned.ID, policy.PlaceholderToken)
		if err != nil {
			return err
		}
		if len(left) > 0 {
			fs.Errorf(cloned, "%d names still contain %q", len(left), policy.PlaceholderToken)
		}
	}

	if sender != nil {
		brand := notify.DefaultBrand()
		if err = configstruct.Set(cmd.Mapper(configfile.SectionBrand, nil), &brand); err != nil {
			return err
		}
		msg, err := notify.Render(notifyOpt, brand, email, cloned.ViewLink, fullName, policy.PlaceholderToken)
		if err != nil {
			return err
		}
		if _, err = sender.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// cloneWithJournal runs the clone recording it in the journal
func cloneWithJournal(ctx context.Context, r *list.Reader, w *operations.Writer, source string, policy *fs.ClonePolicy) (*fs.Cloned, error) {
	opt := clone.NewOptions(ctx)
	db, err := cmd.OpenJournal()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return clone.Run(ctx, r, w, source, policy, opt)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fs.Errorf(nil, "Failed to close journal: %v", err)
		}
	}()
	rec, err := db.StartRun(cmd.RunID, source)
	if err != nil {
		return nil, err
	}
	opt.Recorder = rec
	cloned, err := clone.Run(ctx, r, w, source, policy, opt)
	if finishErr := rec.Finish(cloned, err); finishErr != nil {
		fs.Errorf(nil, "Failed to record run %s: %v", rec.ID(), finishErr)
	}
	if err != nil {
		fs.Logf(nil, "Partial tree recorded in journal run %s", rec.ID())
	}
	return cloned, err
}

// newSender makes the Gmail sender from the email config
func newSender(ctx context.Context, opt *notify.Options) (notify.Sender, error) {
	ci := fs.GetConfig(ctx)
	client, err := oauthutil.NewClient(ctx, &oauthutil.Credentials{
		ServiceAccountFile:        opt.ServiceAccountFile,
		ServiceAccountCredentials: opt.ServiceAccountCredentials,
		TokenFile:                 opt.TokenFile,
		Impersonate:               opt.Impersonate,
	}, fshttp.NewClient(ci), notify.GmailScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make Gmail client")
	}
	return notify.NewGmailSender(ctx, client, opt.Endpoint)
}
