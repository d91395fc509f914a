package cmd

import (
	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/config/configfile"
	"github.com/rclone/driveclone/fs/config/configstruct"
	"github.com/rclone/driveclone/fs/config/flags"
	"github.com/rclone/driveclone/fs/fspath"
	"github.com/spf13/pflag"
)

// DefaultRootNameTemplate is the name given to new roots unless
// configured otherwise
const DefaultRootNameTemplate = fs.DefaultPlaceholder + " matura informatyka IT"

// PolicyOptions is the clone policy as read from the command line,
// the drive config section and the google_drive config section
type PolicyOptions struct {
	Placeholder        string  `config:"placeholder"`
	RootNameTemplate   string  `config:"root_name_template"`
	DestinationParent  string  `config:"destination_parent"`
	AnyoneRole         fs.Role `config:"anyone_role"`
	LockEditorsSharing bool    `config:"lock_editors_sharing"`
}

// DefaultPolicyOptions returns the policy used when nothing is
// configured
func DefaultPolicyOptions() PolicyOptions {
	return PolicyOptions{
		Placeholder:        fs.DefaultPlaceholder,
		RootNameTemplate:   DefaultRootNameTemplate,
		AnyoneRole:         fs.RoleWriter,
		LockEditorsSharing: true,
	}
}

// policyFlags only receives the parsed flags - the values used come
// from the config map so the flags only override when set
var policyFlags = DefaultPolicyOptions()

// AddPolicyFlags adds the clone policy flags to flagSet
func AddPolicyFlags(flagSet *pflag.FlagSet) {
	flags.StringVarP(flagSet, &policyFlags.Placeholder, "placeholder", "", policyFlags.Placeholder, "Token replaced in the names of cloned items")
	flags.StringVarP(flagSet, &policyFlags.RootNameTemplate, "root-name-template", "", policyFlags.RootNameTemplate, "Name of the new root, the placeholder in it is replaced")
	flags.StringVarP(flagSet, &policyFlags.DestinationParent, "destination-parent", "", policyFlags.DestinationParent, "Folder ID or link to make the new root in (default My Drive)")
	flags.FVarP(flagSet, &policyFlags.AnyoneRole, "anyone-role", "", "Role granted to anyone with the link: reader|commenter|writer|none")
	flags.BoolVarP(flagSet, &policyFlags.LockEditorsSharing, "lock-editors-sharing", "", policyFlags.LockEditorsSharing, "Stop editors sharing the new root further")
}

// NewPolicy makes the clone policy from the config with any flags
// set in flagSet overriding it. substitution replaces the placeholder.
func NewPolicy(flagSet *pflag.FlagSet, substitution string) (*fs.ClonePolicy, error) {
	opt := DefaultPolicyOptions()
	m := Mapper(configfile.SectionClone, flagSet)
	// Older config files keep the policy with the credentials
	m.AddGetter(configfile.EnvGetter(configfile.SectionDrive))
	m.AddGetter(Config.Section(configfile.SectionDrive))
	err := configstruct.Set(m, &opt)
	if err != nil {
		return nil, err
	}
	policy := &fs.ClonePolicy{
		PlaceholderToken:   opt.Placeholder,
		SubstitutionValue:  substitution,
		RootNameTemplate:   opt.RootNameTemplate,
		AnyoneRole:         opt.AnyoneRole,
		LockEditorsSharing: opt.LockEditorsSharing,
	}
	if opt.DestinationParent != "" {
		policy.DestinationParentID, err = fspath.ResolveID(opt.DestinationParent)
		if err != nil {
			return nil, errors.Wrap(err, "bad destination parent")
		}
	}
	if err = policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}
