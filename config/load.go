package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout accepted by Parse and Load.
//
//	defaults:
//	  unexpected_err: true
//	commands:
//	  base:
//	    fail_fast: "Yo"
//	  greet:
//	    parent: base
//	    failure: "greeting failed"
//	    unexpected_err: internal_error
//
// unexpected_err accepts true (passthrough), false (disabled) or any other value,
// which becomes the mapped error. A key set to null is treated as unset.
type File struct {
	Defaults SettingsFile            `yaml:"defaults"`
	Commands map[string]SettingsFile `yaml:"commands"`
}

// SettingsFile is the YAML form of Settings.
type SettingsFile struct {
	Parent        string         `yaml:"parent"`
	Failure       yamlSetting    `yaml:"failure"`
	FailFast      yamlSetting    `yaml:"fail_fast"`
	UnexpectedErr yamlUnexpected `yaml:"unexpected_err"`
}

// Settings converts the YAML form.
func (f SettingsFile) Settings() Settings {
	return Settings{
		DefaultFailure: Setting(f.Failure),
		FailFastError:  Setting(f.FailFast),
		Unexpected:     Unexpected(f.UnexpectedErr),
	}
}

type yamlSetting Setting

func (s *yamlSetting) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		*s = yamlSetting{}
		return nil
	}
	*s = yamlSetting(Set(v))
	return nil
}

type yamlUnexpected Unexpected

func (u *yamlUnexpected) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	*u = yamlUnexpected(parseUnexpected(v))
	return nil
}

func parseUnexpected(v any) Unexpected {
	switch v := v.(type) {
	case nil:
		return Unexpected{}
	case bool:
		if v {
			return Passthrough()
		}
		return Disabled()
	default:
		return Mapped(v)
	}
}

// Load reads a YAML file and builds a Registry from it.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reg, nil
}

// Parse builds a Registry from YAML data. Parents may be declared in any order.
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Registry()
}

// Registry registers every command of f, parents first.
func (f File) Registry() (*Registry, error) {
	reg := NewRegistry(f.Defaults.Settings())

	names := make([]string, 0, len(f.Commands))
	for n := range f.Commands {
		names = append(names, n)
	}
	sort.Strings(names)

	visiting := make(map[string]bool)

	var register func(name string) error
	register = func(name string) error {
		if _, ok := reg.Lookup(name); ok {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("%w: %s", ErrCycle, name)
		}
		visiting[name] = true

		cmd := f.Commands[name]
		if cmd.Parent != "" {
			if _, ok := f.Commands[cmd.Parent]; !ok {
				return fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, cmd.Parent, name)
			}
			if err := register(cmd.Parent); err != nil {
				return err
			}
		}

		_, err := reg.Register(name, cmd.Parent, cmd.Settings())
		return err
	}

	for _, n := range names {
		if err := register(n); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
