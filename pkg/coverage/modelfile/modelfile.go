// Package modelfile loads a declarative YAML description of CoverPoints and
// CoverCrosses, the coverage-model analogue of the teacher lineage's
// declarative scenario YAML: ${VAR}/$VAR substitution against caller-supplied
// variables and the environment, then struct unmarshal, then registration.
package modelfile

import (
	"fmt"
	"os"
	"regexp"

	"github.com/jihwankim/covcrv/pkg/coverage"
	"gopkg.in/yaml.v3"
)

// Document is the top-level shape of a coverage model file. Bins in this
// format are always matched by equality against one named sampler argument,
// since a YAML file cannot carry a Go closure; register custom transforms
// and relations in code via coverage.NewCoverPoint directly instead.
type Document struct {
	Points  []PointDef `yaml:"points"`
	Crosses []CrossDef `yaml:"crosses"`
}

// PointDef declares one CoverPoint.
type PointDef struct {
	Name    string        `yaml:"name"`
	Param   string        `yaml:"param,omitempty"`
	Bins    []interface{} `yaml:"bins"`
	Labels  []string      `yaml:"labels,omitempty"`
	Weight  int           `yaml:"weight,omitempty"`
	AtLeast int           `yaml:"at_least,omitempty"`
}

// CrossDef declares one CoverCross over previously declared points.
type CrossDef struct {
	Name   string `yaml:"name"`
	Points []string `yaml:"points"`
}

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substitute replaces ${VAR}/$VAR references, preferring vars over the
// process environment, and leaving unmatched references untouched.
func substitute(data []byte, vars map[string]string) []byte {
	return varPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := varPattern.FindSubmatch(m)
		name := string(sub[1])
		if name == "" {
			name = string(sub[2])
		}
		if v, ok := vars[name]; ok {
			return []byte(v)
		}
		if v, ok := os.LookupEnv(name); ok {
			return []byte(v)
		}
		return m
	})
}

// ParseFile reads and parses a model file from disk.
func ParseFile(path string, vars map[string]string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Parse(data, vars)
}

// Parse parses model file contents already in memory.
func Parse(data []byte, vars map[string]string) (*Document, error) {
	expanded := substitute(data, vars)
	var doc Document
	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	for _, p := range d.Points {
		if p.Name == "" {
			return fmt.Errorf("model file: point missing name")
		}
		if len(p.Bins) == 0 {
			return fmt.Errorf("model file: point %q has no bins", p.Name)
		}
	}
	for _, x := range d.Crosses {
		if x.Name == "" {
			return fmt.Errorf("model file: cross missing name")
		}
		if len(x.Points) < 2 {
			return fmt.Errorf("model file: cross %q needs at least two points", x.Name)
		}
	}
	return nil
}

// Apply registers every point and cross declared in the document against db,
// in declaration order so crosses can reference points declared earlier in
// the same file.
func (d *Document) Apply(db *coverage.CoverageDB) error {
	for _, p := range d.Points {
		paramNames := []string{"value"}
		opts := []coverage.PointOption{}
		if p.Labels != nil {
			opts = append(opts, coverage.WithLabels(p.Labels))
		}
		if p.Weight > 0 {
			opts = append(opts, coverage.WithWeight(p.Weight))
		}
		if p.AtLeast > 0 {
			opts = append(opts, coverage.WithAtLeast(p.AtLeast))
		}
		if p.Param != "" {
			paramNames = []string{p.Param}
			opts = append(opts, coverage.WithVName(p.Param))
		}
		if _, err := coverage.NewCoverPoint(db, p.Name, p.Bins, paramNames, opts...); err != nil {
			return err
		}
	}
	for _, x := range d.Crosses {
		if _, err := coverage.NewCoverCross(db, x.Name, x.Points, nil); err != nil {
			return err
		}
	}
	return nil
}
