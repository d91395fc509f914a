// Package configfile loads the config file and makes its sections
// available as configmap Getters
package configfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/config/configmap"
	"github.com/spf13/viper"
)

// Config file sections
const (
	SectionDrive  = "google_drive"
	SectionClone  = "drive"
	SectionEmail  = "email"
	SectionBrand  = "brand"
	configName    = "driveclone"
	configDirName = "driveclone"
)

// File is a loaded config file.
//
// A File with no config file behind it returns nothing from its
// sections.
type File struct {
	v    *viper.Viper
	path string
}

// DefaultDir returns the directory searched for the config file when
// none is given
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName)
}

// Load reads the config file at path.
//
// If path is empty "driveclone.{yaml,json,toml}" is looked for in
// DefaultDir and the current directory and it is not an error for it
// to be missing.
func Load(path string) (*File, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		if dir := DefaultDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}
	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			fs.Debugf(nil, "No config file found - using defaults")
			return &File{v: v}, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}
	f := &File{v: v, path: v.ConfigFileUsed()}
	fs.Debugf(nil, "Using config file from %q", f.path)
	return f, nil
}

// Empty returns a File with no config file behind it
func Empty() *File {
	return &File{v: viper.New()}
}

// Path returns the path of the config file in use or "" if none
func (f *File) Path() string {
	return f.path
}

// Section returns a Getter for the keys in section
func (f *File) Section(section string) configmap.Getter {
	return configmap.GetterFunc(func(key string) (string, bool) {
		full := section + "." + key
		if !f.v.IsSet(full) {
			return "", false
		}
		return f.v.GetString(full), true
	})
}

// HasSection returns true if the config file has section in
func (f *File) HasSection(section string) bool {
	return f.v.IsSet(section)
}

// EnvGetter returns a Getter which reads keys of section from the
// environment, e.g. DRIVECLONE_GOOGLE_DRIVE_TOKEN_FILE
func EnvGetter(section string) configmap.Getter {
	return configmap.GetterFunc(func(key string) (string, bool) {
		return os.LookupEnv(fs.ConfigToEnv(section, key))
	})
}

// Mapper returns the config for section with the priority
//
//	overrides (e.g. changed command line flags)
//	environment
//	config file
//
// Anything not found is left at its default by configstruct.
func (f *File) Mapper(section string, overrides ...configmap.Getter) *configmap.Map {
	m := configmap.New()
	for _, override := range overrides {
		m.AddGetter(override)
	}
	m.AddGetter(EnvGetter(section))
	m.AddGetter(f.Section(section))
	return m
}
