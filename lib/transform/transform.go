// Package transform holds functions for name transformations applied
// to cloned items
package transform

import (
	"strings"

	"github.com/rclone/driveclone/fs"
)

// ChildName returns the destination name for a source item called
// name.
//
// Every occurrence of the placeholder token is replaced by the
// substitution value, left to right without overlaps. If the policy
// has no substitution value name is returned unchanged.
func ChildName(name string, p *fs.ClonePolicy) string {
	if p == nil || !p.Substituting() {
		return name
	}
	return strings.Replace(name, p.PlaceholderToken, p.SubstitutionValue, -1)
}

// RootName returns the name for the root of the clone.
//
// If the policy has a root name template that is used with the
// placeholder substituted - the placeholder itself stays as a marker
// if there is no substitution value. Otherwise the source root's own
// name is transformed with ChildName.
func RootName(srcRootName string, p *fs.ClonePolicy) string {
	if p == nil || p.RootNameTemplate == "" {
		return ChildName(srcRootName, p)
	}
	if p.PlaceholderToken == "" {
		return p.RootNameTemplate
	}
	value := p.SubstitutionValue
	if value == "" {
		value = p.PlaceholderToken
	}
	return strings.Replace(p.RootNameTemplate, p.PlaceholderToken, value, -1)
}

// Contains returns true if name still has the placeholder token in
func Contains(name, token string) bool {
	return token != "" && strings.Contains(name, token)
}
