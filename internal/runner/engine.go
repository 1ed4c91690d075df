package runner

import (
	"context"
	"fmt"

	"github.com/alertops/opsgenie/internal/config"
	"github.com/alertops/opsgenie/internal/operator"
	"github.com/alertops/opsgenie/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task pairs an operator with its configured type
type Task struct {
	Type     string
	Operator operator.Operator
}

// Result is the outcome of one executed task
type Result struct {
	TaskID   string
	Type     string
	Response *types.Response
}

// PlannedTask describes what a task would send, without sending it
type PlannedTask struct {
	TaskID  string        `json:"task_id"`
	Type    string        `json:"type"`
	ConnID  string        `json:"conn_id"`
	Target  string        `json:"target,omitempty"`
	Payload types.Payload `json:"payload,omitempty"`
}

// Engine executes alert tasks in order
type Engine struct {
	tasks  []Task
	logger zerolog.Logger
}

// Build creates operators for every task in cfg
func Build(cfg *config.Config, factory operator.HookFactory, logger zerolog.Logger) ([]Task, error) {
	tasks := make([]Task, 0, len(cfg.Tasks))
	for _, tc := range cfg.Tasks {
		opts := []operator.Option{
			operator.WithConnID(tc.ConnID),
			operator.WithHookFactory(factory),
			operator.WithLogger(logger),
		}

		var op operator.Operator
		switch tc.Type {
		case config.TaskCreateAlert:
			if tc.Alert == nil {
				return nil, fmt.Errorf("task %s: missing alert section", tc.TaskID)
			}
			op = operator.NewCreateAlertOperator(tc.TaskID, *tc.Alert, opts...)
		case config.TaskCloseAlert:
			if tc.Close == nil {
				return nil, fmt.Errorf("task %s: missing close section", tc.TaskID)
			}
			op = operator.NewCloseAlertOperator(tc.TaskID, *tc.Close, opts...)
		case config.TaskDeleteAlert:
			if tc.Delete == nil {
				return nil, fmt.Errorf("task %s: missing delete section", tc.TaskID)
			}
			op = operator.NewDeleteAlertOperator(tc.TaskID, *tc.Delete, opts...)
		default:
			return nil, fmt.Errorf("task %s: unknown type %q", tc.TaskID, tc.Type)
		}

		tasks = append(tasks, Task{Type: tc.Type, Operator: op})
	}
	return tasks, nil
}

// NewEngine creates a new task engine
func NewEngine(tasks []Task, logger zerolog.Logger) *Engine {
	return &Engine{
		tasks:  tasks,
		logger: logger.With().Str("component", "runner").Logger(),
	}
}

// Run executes the tasks in order, each exactly once. When only is
// non-empty, tasks whose id is not listed are skipped. Run stops at the
// first failing task and returns the results gathered before it.
func (e *Engine) Run(ctx context.Context, only ...string) ([]Result, error) {
	selected, err := e.selectTasks(only)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With().Str("run_id", uuid.NewString()).Logger()
	logger.Info().
		Int("task_count", len(selected)).
		Msg("Starting run")

	results := make([]Result, 0, len(selected))
	for _, task := range selected {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		id := task.Operator.ID()
		resp, err := task.Operator.Execute(ctx)
		if err != nil {
			logger.Error().
				Err(err).
				Str("task_id", id).
				Str("type", task.Type).
				Msg("Task failed")
			return results, fmt.Errorf("task %s: %w", id, err)
		}

		event := logger.Info().
			Str("task_id", id).
			Str("type", task.Type)
		if resp != nil {
			event = event.Str("request_id", resp.RequestID).Str("result", resp.Result)
		}
		event.Msg("Task succeeded")

		results = append(results, Result{TaskID: id, Type: task.Type, Response: resp})
	}

	logger.Info().
		Int("task_count", len(results)).
		Msg("Run finished")

	return results, nil
}

// Plan reports the request each selected task would send
func (e *Engine) Plan(only ...string) ([]PlannedTask, error) {
	selected, err := e.selectTasks(only)
	if err != nil {
		return nil, err
	}

	plan := make([]PlannedTask, 0, len(selected))
	for _, task := range selected {
		p := PlannedTask{TaskID: task.Operator.ID(), Type: task.Type}
		switch op := task.Operator.(type) {
		case *operator.CreateAlertOperator:
			p.ConnID = op.ConnID
			p.Target = op.Alias
			p.Payload = op.BuildPayload()
		case *operator.CloseAlertOperator:
			p.ConnID = op.ConnID
			p.Target = op.Identifier
			p.Payload = op.BuildPayload()
		case *operator.DeleteAlertOperator:
			p.ConnID = op.ConnID
			p.Target = op.Identifier
		}
		plan = append(plan, p)
	}
	return plan, nil
}

// selectTasks filters tasks by id, keeping configured order
func (e *Engine) selectTasks(only []string) ([]Task, error) {
	if len(only) == 0 {
		return e.tasks, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, id := range only {
		wanted[id] = true
	}

	selected := make([]Task, 0, len(only))
	for _, task := range e.tasks {
		if wanted[task.Operator.ID()] {
			selected = append(selected, task)
			delete(wanted, task.Operator.ID())
		}
	}
	for _, id := range only {
		if wanted[id] {
			return nil, fmt.Errorf("unknown task %q", id)
		}
	}
	return selected, nil
}
