// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fprescan

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/fprescan/prescanner"
	"github.com/bufbuild/fprescan/source"
)

// Config is the configuration file format of a [Driver].
//
// Every field is optional; a field that is left out leaves the corresponding
// setting of the driver alone.
type Config struct {
	// "fixed" or "free". If set, every top-level file is in this form.
	Form string `yaml:"form"`
	// The last column of a fixed-form statement field.
	ColumnLimit int `yaml:"column_limit"`
	// The encoding of every file opened, "utf-8" or "latin-1".
	Encoding string `yaml:"encoding"`

	IncludePaths []string `yaml:"include_paths"`
	// Predefined macros, as NAME or NAME=VALUE.
	Defines []string `yaml:"defines"`

	// Additional compiler directive sentinels.
	Sentinels []string `yaml:"sentinels"`
	OpenMP    bool     `yaml:"openmp"`
	OpenACC   bool     `yaml:"openacc"`

	Features struct {
		Enable  []string `yaml:"enable"`
		Disable []string `yaml:"disable"`
		Warn    []string `yaml:"warn"`
	} `yaml:"features"`

	MaxParallelism int `yaml:"max_parallelism"`
}

// LoadConfig reads a YAML configuration document. Unknown keys are an error.
// An empty document is an empty configuration.
func LoadConfig(r io.Reader) (*Config, error) {
	config := new(Config)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fprescan: invalid configuration: %w", err)
	}
	return config, nil
}

// Apply applies this configuration to d. List settings are appended to
// those already in d.
func (c *Config) Apply(d *Driver) error {
	if c.Form != "" {
		form, err := prescanner.ParseForm(c.Form)
		if err != nil {
			return fmt.Errorf("fprescan: form: %w", err)
		}
		d.Options.Form = form
		d.ForceForm = true
	}
	if c.ColumnLimit != 0 {
		d.Options.FixedFormColumnLimit = c.ColumnLimit
	}
	if c.Encoding != "" {
		encoding, err := source.ParseEncoding(c.Encoding)
		if err != nil {
			return fmt.Errorf("fprescan: encoding: %w", err)
		}
		switch opener := d.Opener.(type) {
		case *source.OS:
			opener.Encoding = encoding
		case *source.FS:
			opener.Encoding = encoding
		default:
			return fmt.Errorf("fprescan: encoding: cannot set the encoding of a %T", d.Opener)
		}
	}

	d.IncludePaths = append(d.IncludePaths, c.IncludePaths...)
	for _, def := range c.Defines {
		d.Defines = append(d.Defines, ParseDefine(def))
	}

	d.Options.Sentinels = append(d.Options.Sentinels, c.Sentinels...)
	if c.OpenMP {
		d.Options.Sentinels = append(d.Options.Sentinels, prescanner.OpenMPSentinels...)
	}
	if c.OpenACC {
		d.Options.Sentinels = append(d.Options.Sentinels, prescanner.OpenACCSentinels...)
	}

	features := []struct {
		names []string
		apply func(prescanner.Feature)
	}{
		{c.Features.Enable, func(f prescanner.Feature) { d.Options.Features.Enable(f, true) }},
		{c.Features.Disable, func(f prescanner.Feature) { d.Options.Features.Enable(f, false) }},
		{c.Features.Warn, func(f prescanner.Feature) { d.Options.Features.Warn(f, true) }},
	}
	for _, list := range features {
		for _, name := range list.names {
			f, err := prescanner.ParseFeature(name)
			if err != nil {
				return fmt.Errorf("fprescan: features: %w", err)
			}
			list.apply(f)
		}
	}

	if c.MaxParallelism != 0 {
		d.MaxParallelism = c.MaxParallelism
	}
	return nil
}
