package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/dirtycheck/pkg/wpadmin"
)

// Options name the entities and edits of the multi-entity suite.
type Options struct {
	TemplateName      string   `yaml:"template_name" json:"template_name"`
	TemplatePartName  string   `yaml:"template_part_name" json:"template_part_name"`
	Theme             string   `yaml:"theme" json:"theme"`
	TemplatePartLines []string `yaml:"template_part_lines" json:"template_part_lines"`
	ParentEdit        string   `yaml:"parent_edit" json:"parent_edit"`
	ChildEdit         string   `yaml:"child_edit" json:"child_edit"`

	// Experiments are checkbox selectors on the experiments screen
	Experiments []string `yaml:"experiments" json:"experiments"`

	// PostTypes are trashed before the suite starts
	PostTypes []string `yaml:"post_types" json:"post_types"`

	// Filter is a glob over scenario names
	Filter string `yaml:"filter" json:"filter"`
}

// DefaultOptions returns the stock suite settings.
func DefaultOptions() Options {
	return Options{
		TemplateName:     "Test Template Name Edit",
		TemplatePartName: "Test Template Part Name Edit",
		Theme:            "test-theme",
		TemplatePartLines: []string{
			"Default template part test text.",
			"Second paragraph test.",
		},
		ParentEdit:  "Test.",
		ChildEdit:   "Some more test words!",
		Experiments: append([]string(nil), wpadmin.DefaultExperiments...),
		PostTypes:   []string{wpadmin.PostTypeTemplate, wpadmin.PostTypeTemplatePart},
	}
}

// WithDefaults fills every unset field from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.TemplateName == "" {
		o.TemplateName = d.TemplateName
	}
	if o.TemplatePartName == "" {
		o.TemplatePartName = d.TemplatePartName
	}
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	if len(o.TemplatePartLines) == 0 {
		o.TemplatePartLines = d.TemplatePartLines
	}
	if o.ParentEdit == "" {
		o.ParentEdit = d.ParentEdit
	}
	if o.ChildEdit == "" {
		o.ChildEdit = d.ChildEdit
	}
	if o.Experiments == nil {
		o.Experiments = d.Experiments
	}
	if o.PostTypes == nil {
		o.PostTypes = d.PostTypes
	}
	return o
}

// Validate rejects settings the suite cannot work with.
func (o Options) Validate() error {
	o = o.WithDefaults()
	parent, child := o.TemplateName, o.TemplatePartName
	if parent == child {
		return fmt.Errorf("template and template part need distinct names, both are %q", parent)
	}
	// The save panel lookup matches labels containing the name
	if strings.Contains(parent, child) || strings.Contains(child, parent) {
		return fmt.Errorf("template name %q and template part name %q must not contain one another", parent, child)
	}
	return nil
}

// LoadOptions reads suite options from a YAML file. Missing fields stay unset;
// apply WithDefaults once other sources have had their say.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read suite file: %w", err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse suite file: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
