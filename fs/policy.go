package fs

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPlaceholder is the token substituted in names unless configured otherwise
const DefaultPlaceholder = "IMIE_NAZWISKO"

// Role is the role granted to anyone with the link.
//
// The zero value means no public grant.
type Role string

// Roles which may be granted
const (
	RoleNone      Role = ""
	RoleReader    Role = "reader"
	RoleCommenter Role = "commenter"
	RoleWriter    Role = "writer"
)

var validRoles = []Role{RoleReader, RoleCommenter, RoleWriter}

// String turns a Role into a string
func (r Role) String() string {
	return string(r)
}

// Set a Role from a string - "" and "none" disable the grant
func (r *Role) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" || s == "off" {
		*r = RoleNone
		return nil
	}
	for _, role := range validRoles {
		if s == string(role) {
			*r = role
			return nil
		}
	}
	return errors.Errorf("unknown role %q - must be one of reader, commenter, writer or none", s)
}

// Type of the value
func (r *Role) Type() string {
	return "Role"
}

// UnmarshalJSON parses a Role from a JSON string
func (r *Role) UnmarshalJSON(in []byte) error {
	var s string
	if err := json.Unmarshal(in, &s); err != nil {
		return err
	}
	return r.Set(s)
}

// ClonePolicy is the immutable configuration for one clone run
type ClonePolicy struct {
	PlaceholderToken    string // literal substring recognised in source names
	SubstitutionValue   string // replacement - empty disables substitution
	RootNameTemplate    string // overrides the root name if set
	DestinationParentID string // empty means the storage root
	AnyoneRole          Role   // RoleNone disables the public grant
	LockEditorsSharing  bool   // stop collaborators sharing further
}

// NewClonePolicy returns a ClonePolicy with the default placeholder
func NewClonePolicy() *ClonePolicy {
	return &ClonePolicy{
		PlaceholderToken: DefaultPlaceholder,
	}
}

// Substituting returns true if names will be changed by the policy
func (p *ClonePolicy) Substituting() bool {
	return p.PlaceholderToken != "" && p.SubstitutionValue != ""
}

// Validate checks the policy is usable
func (p *ClonePolicy) Validate() error {
	if p.PlaceholderToken == "" && (p.SubstitutionValue != "" || p.RootNameTemplate != "") {
		return errors.New("placeholder token must be set to substitute names")
	}
	if p.AnyoneRole != RoleNone {
		role := p.AnyoneRole
		if err := role.Set(string(p.AnyoneRole)); err != nil {
			return err
		}
	}
	return nil
}
