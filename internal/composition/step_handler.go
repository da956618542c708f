package composition

import (
	"context"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-crunch/internal/command"
	"github.com/deploymenttheory/go-crunch/internal/driver"
	apperrors "github.com/deploymenttheory/go-crunch/internal/errors"
	"github.com/deploymenttheory/go-crunch/internal/logger"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Runner executes a resolved command; *driver.Driver satisfies it
type Runner interface {
	Execute(ctx context.Context, cmd command.Command) (driver.Result, error)
}

// StepHandler is a function that executes a workflow step
type StepHandler func(ctx context.Context, runner Runner, step Step) (map[string]interface{}, error)

// Executor runs workflows against a filesystem
type Executor struct {
	fs     afero.Fs
	runner Runner
}

// NewExecutor returns an Executor that expands input patterns on fsys and
// hands the resulting commands to runner
func NewExecutor(fsys afero.Fs, runner Runner) *Executor {
	return &Executor{fs: fsys, runner: runner}
}

func createStepHandlerRegistry() map[string]StepHandler {
	return map[string]StepHandler{
		"":             handleAutoStep,
		StepAuto:       handleAutoStep,
		StepCompress:   kindStep(command.Compress),
		StepDecompress: kindStep(command.Decompress),
	}
}

// ExecuteWorkflow runs the steps in order. A failing step stops the workflow
// unless it is marked continue_on_error, in which case its error is collected
// and returned once every step had its turn.
func (e *Executor) ExecuteWorkflow(ctx context.Context, workflow *Workflow) error {
	logger.LogInfo("Starting workflow execution", map[string]interface{}{
		"workflow": workflow.Name,
		"steps":    len(workflow.Steps),
	})

	if workflow.Variables == nil {
		workflow.Variables = make(map[string]interface{})
	}

	registry := createStepHandlerRegistry()
	var collected error

	for i, step := range workflow.Steps {
		if err := ctx.Err(); err != nil {
			return multierr.Append(collected, err)
		}

		logger.LogInfo(fmt.Sprintf("Executing step %d/%d: %s", i+1, len(workflow.Steps), step.Name),
			map[string]interface{}{
				"type":        step.Type,
				"description": step.Description,
			})

		if step.Condition != "" {
			shouldRun, err := evaluateCondition(step.Condition, workflow.Variables)
			if err != nil {
				return multierr.Append(collected, fmt.Errorf("error evaluating condition for step '%s': %w", step.Name, err))
			}
			if !shouldRun {
				logger.LogInfo(fmt.Sprintf("Skipping step %d/%d: %s (condition not met)", i+1, len(workflow.Steps), step.Name), nil)
				continue
			}
		}

		handler, found := registry[step.Type]
		if !found {
			return multierr.Append(collected, fmt.Errorf("no handler found for step type '%s'", step.Type))
		}

		rendered, err := renderStep(step, workflow.Variables)
		if err != nil {
			return multierr.Append(collected, fmt.Errorf("error processing templates in step '%s': %w", step.Name, err))
		}

		result, err := e.runStep(ctx, handler, rendered)
		if err != nil {
			err = fmt.Errorf("error executing step '%s': %w", step.Name, err)
			if !step.ContinueOnError {
				return multierr.Append(collected, err)
			}
			logger.LogWarn("Step failed, continuing", map[string]interface{}{
				"step":  step.Name,
				"error": err.Error(),
			})
			collected = multierr.Append(collected, err)
			continue
		}

		for k, v := range result {
			workflow.Variables[k] = v
		}

		logger.LogInfo(fmt.Sprintf("Completed step %d/%d: %s", i+1, len(workflow.Steps), step.Name), nil)
	}

	if collected != nil {
		return collected
	}

	logger.LogInfo("Workflow execution completed successfully", map[string]interface{}{
		"workflow": workflow.Name,
	})
	return nil
}

func (e *Executor) runStep(ctx context.Context, handler StepHandler, step Step) (map[string]interface{}, error) {
	inputs, err := expandInputs(e.fs, step.Inputs)
	if err != nil {
		return nil, err
	}
	step.Inputs = inputs
	return handler(ctx, e.runner, step)
}

// evaluateCondition renders the condition and checks whether it reads as true
func evaluateCondition(condition string, variables map[string]interface{}) (bool, error) {
	result, err := processTemplate(condition, variables)
	if err != nil {
		return false, err
	}

	result = strings.TrimSpace(strings.ToLower(result))
	return result == "true" || result == "yes" || result == "1", nil
}

func handleAutoStep(ctx context.Context, runner Runner, step Step) (map[string]interface{}, error) {
	cmd, err := command.Resolve(step.Inputs, step.Output)
	if err != nil {
		return nil, err
	}
	return runStep(ctx, runner, step, cmd)
}

// kindStep builds a handler that refuses to run when the resolver disagrees
// with the type the step declares
func kindStep(want command.Kind) StepHandler {
	return func(ctx context.Context, runner Runner, step Step) (map[string]interface{}, error) {
		cmd, err := command.Resolve(step.Inputs, step.Output)
		if err != nil {
			return nil, err
		}
		if cmd.Kind != want {
			return nil, apperrors.InvalidInput(fmt.Sprintf(
				"step is declared as %s but '%s' makes it a %s", want, step.Output, cmd.Kind))
		}
		return runStep(ctx, runner, step, cmd)
	}
}

func runStep(ctx context.Context, runner Runner, step Step, cmd command.Command) (map[string]interface{}, error) {
	res, err := runner.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}

	logger.LogDebug("Step produced outputs", map[string]interface{}{
		"step":    step.Name,
		"outputs": len(res.Outputs),
		"written": humanize.Bytes(uint64(res.BytesWritten)),
	})

	result := map[string]interface{}{
		"last_outputs": res.Outputs,
	}
	if len(res.Outputs) > 0 {
		result["last_output"] = res.Outputs[0]
		result[stepVariable(step.Name)] = res.Outputs[0]
	}
	return result, nil
}

// stepVariable is the variable holding a step's first output, e.g. "make-backup"
// becomes "make_backup_output"
func stepVariable(name string) string {
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(name) + "_output"
}
