package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// A sweep lists the values to take the cartesian product of. Any list left
// empty in a config file falls back to the corresponding flag's value.
type sweep struct {
	Qubits   []int `yaml:"qubits"`
	Trials   []int `yaml:"trials"`
	Parallel []int `yaml:"parallel"`
	Seed     int64 `yaml:"seed"`
}

// loadSweep reads a YAML sweep file, expanding ${VAR} references against the
// environment first.
func loadSweep(path string) (*sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep file %q: %w", path, err)
	}
	var s sweep
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &s); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays s onto the flag set: flags set explicitly on the command line
// win, then values from s, then flag defaults.
func (s *sweep) merge(fs *flag.FlagSet) error {
	for name, vals := range map[string][]int{
		"qubits":   s.Qubits,
		"trials":   s.Trials,
		"parallel": s.Parallel,
	} {
		if fs.Changed(name) || len(vals) == 0 {
			continue
		}
		if err := fs.Set(name, joinInts(vals)); err != nil {
			return fmt.Errorf("applying %s from sweep file: %w", name, err)
		}
	}
	if !fs.Changed("seed") && s.Seed != 0 {
		if err := fs.Set("seed", fmt.Sprint(s.Seed)); err != nil {
			return fmt.Errorf("applying seed from sweep file: %w", err)
		}
	}
	return nil
}

func joinInts(vals []int) string {
	s := ""
	for i, v := range vals {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprint(v)
	}
	return s
}
