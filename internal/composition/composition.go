// Package composition runs batches of compress and decompress jobs described
// in a workflow file.
package composition

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/fsutil"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// LoadWorkflow loads a workflow from a file on fsys
func LoadWorkflow(fsys afero.Fs, filePath string) (*Workflow, error) {
	if _, err := fsys.Stat(filePath); err != nil {
		return nil, apperrors.FromIO(err)
	}

	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigFile(filePath)

	// Determine the file extension for type
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != "" {
		v.SetConfigType(ext[1:])
	} else {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading workflow file: %w", err)
	}

	return decodeWorkflow(v, filepath.Dir(filePath))
}

// ParseWorkflow reads a workflow of the given type (yaml, json, toml) from r.
// Relative paths in it are taken relative to the working directory.
func ParseWorkflow(r io.Reader, configType string) (*Workflow, error) {
	v := viper.New()
	v.SetConfigType(configType)

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading workflow: %w", err)
	}

	return decodeWorkflow(v, ".")
}

func decodeWorkflow(v *viper.Viper, dir string) (*Workflow, error) {
	workflow := &Workflow{}
	if err := v.Unmarshal(workflow); err != nil {
		return nil, fmt.Errorf("error parsing workflow: %w", err)
	}

	if workflow.Variables == nil {
		workflow.Variables = make(map[string]interface{})
	}
	addSystemVariables(workflow, dir)

	return workflow, nil
}

// addSystemVariables fills in variables every step can use. Values from the
// workflow file win.
func addSystemVariables(workflow *Workflow, dir string) {
	now := time.Now()
	system := map[string]interface{}{
		"timestamp":    fmt.Sprintf("%d", now.Unix()),
		"date":         now.Format("2006-01-02"),
		"workflow_dir": dir,
	}
	if cwd, err := os.Getwd(); err == nil {
		system["current_dir"] = cwd
	}

	for k, val := range system {
		if _, set := workflow.Variables[k]; !set {
			workflow.Variables[k] = val
		}
	}
}

// renderStep returns a copy of step with its templates expanded
func renderStep(step Step, variables map[string]interface{}) (Step, error) {
	rendered := step
	rendered.Inputs = make([]string, 0, len(step.Inputs))

	for _, in := range step.Inputs {
		r, err := processTemplate(in, variables)
		if err != nil {
			return Step{}, fmt.Errorf("input %q: %w", in, err)
		}
		rendered.Inputs = append(rendered.Inputs, r)
	}

	out, err := processTemplate(step.Output, variables)
	if err != nil {
		return Step{}, fmt.Errorf("output %q: %w", step.Output, err)
	}
	if out != "" {
		out = fsutil.ExpandHome(out)
	}
	rendered.Output = out

	return rendered, nil
}

// newTemplate returns a template with the sprig function set, e.g.
// {{ .site | base }} or {{ now | date "20060102" }}
func newTemplate(name string) *template.Template {
	return template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error")
}

// processTemplate processes a single template string
func processTemplate(templateString string, variables map[string]interface{}) (string, error) {
	if !strings.Contains(templateString, "{{") {
		return templateString, nil
	}

	tmpl, err := newTemplate("inline").Parse(templateString)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, variables); err != nil {
		return "", err
	}

	return buffer.String(), nil
}

// ValidateWorkflow validates the workflow structure and returns every problem found
func ValidateWorkflow(workflow *Workflow) []error {
	var errors []error

	if workflow.Name == "" {
		errors = append(errors, fmt.Errorf("workflow name is required"))
	}

	if len(workflow.Steps) == 0 {
		errors = append(errors, fmt.Errorf("workflow must contain at least one step"))
	}

	seen := make(map[string]bool, len(workflow.Steps))
	for i, step := range workflow.Steps {
		if step.Name == "" {
			errors = append(errors, fmt.Errorf("step %d: name is required", i+1))
		} else if seen[step.Name] {
			errors = append(errors, fmt.Errorf("step %d (%s): duplicate step name", i+1, step.Name))
		}
		seen[step.Name] = true

		if !isValidStepType(step.Type) {
			errors = append(errors, fmt.Errorf("step %d (%s): invalid type '%s'", i+1, step.Name, step.Type))
		}

		for _, err := range validateStepFields(step) {
			errors = append(errors, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err))
		}
	}

	return errors
}

// isValidStepType checks if a step type is valid; empty means auto
func isValidStepType(stepType string) bool {
	switch stepType {
	case "", StepAuto, StepCompress, StepDecompress:
		return true
	}
	return false
}

// validateStepFields checks required fields and template syntax
func validateStepFields(step Step) []error {
	var errors []error

	if len(step.Inputs) == 0 {
		errors = append(errors, fmt.Errorf("missing required field 'inputs'"))
	}
	if step.Type == StepCompress && step.Output == "" {
		errors = append(errors, fmt.Errorf("missing required field 'output'"))
	}

	fields := append([]string{step.Output, step.Condition}, step.Inputs...)
	for _, f := range fields {
		if !strings.Contains(f, "{{") {
			continue
		}
		if _, err := newTemplate("check").Parse(f); err != nil {
			errors = append(errors, fmt.Errorf("bad template %q: %w", f, err))
		}
	}

	return errors
}
