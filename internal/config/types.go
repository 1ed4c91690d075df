package config

import (
	"time"

	"github.com/alertops/opsgenie/internal/types"
)

// Task types
const (
	TaskCreateAlert = "create_alert"
	TaskCloseAlert  = "close_alert"
	TaskDeleteAlert = "delete_alert"
)

// Defaults applied by the loader
const (
	DefaultConnID  = "opsgenie_default"
	DefaultHost    = "https://api.opsgenie.com"
	DefaultTimeout = 10 * time.Second
)

// Config represents the complete operator configuration
type Config struct {
	Connections map[string]Connection `yaml:"connections"`
	Tasks       []TaskConfig          `yaml:"tasks"`
}

// Connection describes how to reach one Opsgenie account
type Connection struct {
	ID        string        `yaml:"-"`
	Host      string        `yaml:"host,omitempty"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`

	// APIKey is resolved from APIKeyEnv at runtime, never read from the file.
	APIKey string `yaml:"-"`
}

// TaskConfig defines a single operator invocation
type TaskConfig struct {
	TaskID string                    `yaml:"task_id"`
	Type   string                    `yaml:"type"` // "create_alert", "close_alert" or "delete_alert"
	ConnID string                    `yaml:"conn_id,omitempty"`
	Alert  *types.AlertRequest       `yaml:"alert,omitempty"`
	Close  *types.CloseAlertRequest  `yaml:"close,omitempty"`
	Delete *types.DeleteAlertRequest `yaml:"delete,omitempty"`
}
