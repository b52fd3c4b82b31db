// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package buildctx holds the properties passed between releasekit steps of a
// build, such as the computed release and development versions.
package buildctx

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Context is the set of properties shared by the steps of one build.
// Lookups fall back to the process environment.
type Context struct {
	props  map[string]string
	getenv func(string) (string, bool)
}

type file struct {
	Properties map[string]string `toml:"properties"`
}

// New returns an empty context.
func New() *Context {
	return &Context{
		props:  make(map[string]string),
		getenv: os.LookupEnv,
	}
}

// Set sets property name to value.
func (c *Context) Set(name, value string) {
	c.props[name] = value
}

// Get returns the value of property name, ignoring the environment.
func (c *Context) Get(name string) (string, bool) {
	v, ok := c.props[name]
	return v, ok
}

// Lookup returns the value of property name, or of the environment variable
// with that name when the property is not set or blank.
func (c *Context) Lookup(name string) (string, bool) {
	v, ok := c.props[name]
	if ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	if c.getenv != nil {
		if env, found := c.getenv(name); found {
			return env, true
		}
	}
	return v, ok
}

// Names returns the property names in sorted order.
func (c *Context) Names() []string {
	return slices.Sorted(maps.Keys(c.props))
}

// Load reads a context saved by Save. A missing file gives an empty context.
func Load(path string) (*Context, error) {
	c := New()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing build context %s: %w", path, err)
	}
	maps.Copy(c.props, f.Properties)
	return c, nil
}

// Save writes the context to path as TOML, creating parent directories.
func (c *Context) Save(path string) error {
	data, err := toml.Marshal(&file{Properties: c.props})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadDotEnv sets the variables of the given .env files that are not already
// set. Files that do not exist are ignored.
func (c *Context) LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		env, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for k, v := range env {
			if _, ok := c.props[k]; !ok {
				c.props[k] = v
			}
		}
	}
	return nil
}
