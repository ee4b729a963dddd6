// Copyright 2026 The Wayfarer Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wayfarer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// routeSpec is the on-disk shape of one route in a routes file.
type routeSpec struct {
	Path     string         `yaml:"path" toml:"path"`
	Name     string         `yaml:"name,omitempty" toml:"name,omitempty"`
	Meta     map[string]any `yaml:"meta,omitempty" toml:"meta,omitempty"`
	Children []routeSpec    `yaml:"children,omitempty" toml:"children,omitempty"`
}

// routesFile is the on-disk shape of a routes file.
type routesFile struct {
	Routes []routeSpec `yaml:"routes" toml:"routes"`
}

// LoadTemplates reads route templates from a YAML (.yaml/.yml) or TOML
// (.toml) routes file. Templates are returned in file order; nesting in the
// file becomes template nesting.
//
// Example routes.yaml:
//
//	routes:
//	  - path: /
//	    name: home
//	  - path: /user/:id
//	    name: user
//	    meta:
//	      requiresAuth: true
//	    children:
//	      - path: profile
//	        name: user-profile
//
// The file is only parsed here; templates are validated when registered
// with a Matcher, keeping registration all-or-nothing in one place.
func LoadTemplates(path string) ([]*RouteTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return ParseTemplates(data, filepath.Ext(path))
}

// ParseTemplates decodes routes file content. ext selects the format:
// ".yaml"/".yml" or ".toml".
func ParseTemplates(data []byte, ext string) ([]*RouteTemplate, error) {
	var file routesFile

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode yaml routes: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode toml routes: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrRoutesFileUnsupported, ext)
	}

	templates := make([]*RouteTemplate, len(file.Routes))
	for i := range file.Routes {
		templates[i] = file.Routes[i].toTemplate()
	}
	return templates, nil
}

func (rs *routeSpec) toTemplate() *RouteTemplate {
	t := &RouteTemplate{
		Path: rs.Path,
		Name: rs.Name,
		Meta: rs.Meta,
	}
	for i := range rs.Children {
		t.Children = append(t.Children, rs.Children[i].toTemplate())
	}
	return t
}
