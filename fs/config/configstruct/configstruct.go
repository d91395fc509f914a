// Package configstruct parses unstructured maps into structures
package configstruct

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rclone/driveclone/fs/config/configmap"
)

var matchUpper = regexp.MustCompile("([A-Z]+)")

// camelToSnake converts CamelCase to snake_case
func camelToSnake(in string) string {
	out := matchUpper.ReplaceAllString(in, "_$1")
	out = strings.ToLower(out)
	out = strings.Trim(out, "_")
	return out
}

// setter is implemented by option types which parse themselves,
// e.g. fs.Role and fs.LogLevel
type setter interface {
	Set(string) error
}

var durationType = reflect.TypeOf(time.Duration(0))

// StringToInterface turns in into an interface{} the same type as def
func StringToInterface(def interface{}, in string) (newValue interface{}, err error) {
	typ := reflect.TypeOf(def)
	o := reflect.New(typ)
	if s, ok := o.Interface().(setter); ok {
		if err = s.Set(in); err != nil {
			return nil, err
		}
		return o.Elem().Interface(), nil
	}
	v := o.Elem()
	if typ == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(in))
		if err != nil {
			return nil, err
		}
		v.SetInt(int64(d))
		return v.Interface(), nil
	}
	switch typ.Kind() {
	case reflect.String:
		// Pass strings unmodified
		v.SetString(in)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(in))
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(in), 10, typ.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(in), 10, typ.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(in), typ.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(f)
	default:
		return nil, errors.Errorf("don't know how to parse %T", def)
	}
	return v.Interface(), nil
}

// Item describes a single entry in the options structure
type Item struct {
	Name  string // snake_case
	Field string // CamelCase
	Num   int    // number of the field in the struct
	Value interface{}
}

// Items parses the opt struct and returns a slice of Item objects.
//
// opt must be a pointer to a struct.  The struct should have entirely
// public fields.
//
// The config_name is looked up in a struct tag called "config" or if
// not found is the field name converted from CamelCase to snake_case.
func Items(opt interface{}) (items []Item, err error) {
	def := reflect.ValueOf(opt)
	if def.Kind() != reflect.Ptr {
		return nil, errors.New("argument must be a pointer")
	}
	def = def.Elem() // indirect the pointer
	if def.Kind() != reflect.Struct {
		return nil, errors.New("argument must be a pointer to a struct")
	}
	defType := def.Type()
	for i := 0; i < def.NumField(); i++ {
		field := defType.Field(i)
		configName, ok := field.Tag.Lookup("config")
		if !ok {
			configName = camelToSnake(field.Name)
		}
		if configName == "-" {
			continue
		}
		items = append(items, Item{
			Name:  configName,
			Field: field.Name,
			Num:   i,
			Value: def.Field(i).Interface(),
		})
	}
	return items, nil
}

// Set interprets the field names in defaults and looks up config
// values in the config passed in.  Any values found in config will be
// set in the opt structure.
//
// opt must be a pointer to a struct.  The struct should have entirely
// public fields.  The field names are converted from CamelCase to
// snake_case and looked up in the config supplied or a
// `config:"field_name"` is looked up. A tag of `config:"-"` skips the
// field.
//
// An empty value in the config is the same as unset unless the field
// is a string.
func Set(config configmap.Getter, opt interface{}) (err error) {
	defaultItems, err := Items(opt)
	if err != nil {
		return err
	}
	defStruct := reflect.ValueOf(opt).Elem()
	for _, defaultItem := range defaultItems {
		configValue, ok := config.Get(defaultItem.Name)
		if !ok {
			continue
		}
		newValue, err := StringToInterface(defaultItem.Value, configValue)
		if err != nil {
			if configValue == "" {
				continue
			}
			return errors.Wrapf(err, "couldn't parse config item %q = %q as %T", defaultItem.Name, configValue, defaultItem.Value)
		}
		defStruct.Field(defaultItem.Num).Set(reflect.ValueOf(newValue))
	}
	return nil
}
