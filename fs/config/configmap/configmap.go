// Package configmap provides an abstraction for reading and writing config
package configmap

import (
	"sort"
	"strings"
)

// Getter provides an interface to get config items
type Getter interface {
	// Get should get an item with the key passed in and return
	// the value. If the item is found then it should return true,
	// otherwise false.
	Get(key string) (value string, ok bool)
}

// Setter provides an interface to set config items
type Setter interface {
	// Set should set an item into persistent config store.
	Set(key, value string)
}

// Mapper provides an interface to read and write config
type Mapper interface {
	Getter
	Setter
}

// GetterFunc turns a function into a Getter
type GetterFunc func(key string) (value string, ok bool)

// Get calls the function
func (f GetterFunc) Get(key string) (value string, ok bool) {
	return f(key)
}

// Map provides a wrapper around multiple Setter and Getter
// interfaces.
//
// Getters are consulted in the order they were added so the highest
// priority source should be added first.
type Map struct {
	setters []Setter
	getters []Getter
}

// New returns an empty Map
func New() *Map {
	return &Map{}
}

// AddGetter appends a getter onto the end of the getters
func (c *Map) AddGetter(getter Getter) *Map {
	c.getters = append(c.getters, getter)
	return c
}

// AddSetter appends a setter onto the end of the setters
func (c *Map) AddSetter(setter Setter) *Map {
	c.setters = append(c.setters, setter)
	return c
}

// Get gets an item with the key passed in and return the value from
// the first getter which has it.
func (c *Map) Get(key string) (value string, ok bool) {
	for _, do := range c.getters {
		value, ok = do.Get(key)
		if ok {
			return value, ok
		}
	}
	return "", false
}

// Set sets an item into all the stored setters.
func (c *Map) Set(key, value string) {
	for _, do := range c.setters {
		do.Set(key, value)
	}
}

// Simple is a simple Mapper for testing
type Simple map[string]string

// Get the value
func (c Simple) Get(key string) (value string, ok bool) {
	value, ok = c[key]
	return value, ok
}

// Set the value
func (c Simple) Set(key, value string) {
	c[key] = value
}

// String returns the keys and values sorted by key
func (c Simple) String() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out strings.Builder
	for i, k := range keys {
		if i > 0 {
			out.WriteRune(',')
		}
		out.WriteString(k)
		out.WriteString("='")
		out.WriteString(strings.Replace(c[k], "'", "''", -1))
		out.WriteRune('\'')
	}
	return out.String()
}
