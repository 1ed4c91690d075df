package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownConnection is returned when a connection id is neither
// configured nor resolvable from the environment.
var ErrUnknownConnection = errors.New("unknown connection")

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if err := loadYAML(path, cfg); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	// Set defaults
	for id, conn := range cfg.Connections {
		conn.ID = id
		if conn.Host == "" {
			conn.Host = DefaultHost
		}
		if conn.Timeout == 0 {
			conn.Timeout = DefaultTimeout
		}
		cfg.Connections[id] = conn
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].ConnID == "" {
			cfg.Tasks[i].ConnID = DefaultConnID
		}
	}

	// Validate configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadYAML loads a YAML file into a struct
func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// ResolveConnection returns the connection for connID with its API key
// filled in. Configured connections win; otherwise the connection is
// looked up in the environment.
func (c *Config) ResolveConnection(connID string) (Connection, error) {
	conn, ok := c.Connections[connID]
	if !ok {
		return ConnectionFromEnv(connID)
	}
	conn.APIKey = os.Getenv(conn.APIKeyEnv)
	return conn, nil
}

// ConnectionFromEnv builds a connection from <CONNID>_API_KEY and the
// optional <CONNID>_HOST, with the id upper-cased.
func ConnectionFromEnv(connID string) (Connection, error) {
	prefix := envPrefix(connID)
	keyEnv := prefix + "_API_KEY"
	if os.Getenv(keyEnv) == "" {
		return Connection{}, fmt.Errorf("%w %q: %s is not set", ErrUnknownConnection, connID, keyEnv)
	}

	host := os.Getenv(prefix + "_HOST")
	if host == "" {
		host = DefaultHost
	}

	return Connection{
		ID:        connID,
		Host:      host,
		APIKeyEnv: keyEnv,
		APIKey:    os.Getenv(keyEnv),
		Timeout:   DefaultTimeout,
	}, nil
}

func envPrefix(connID string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(connID))
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	for id, conn := range cfg.Connections {
		if conn.APIKeyEnv == "" {
			return fmt.Errorf("connection %s: api_key_env is required", id)
		}
		if !strings.HasPrefix(conn.Host, "http://") && !strings.HasPrefix(conn.Host, "https://") {
			return fmt.Errorf("connection %s: host must be an http(s) URL", id)
		}
	}

	seen := make(map[string]bool, len(cfg.Tasks))
	for i, task := range cfg.Tasks {
		if task.TaskID == "" {
			return fmt.Errorf("task %d: task_id is required", i)
		}
		if seen[task.TaskID] {
			return fmt.Errorf("task %s: duplicate task_id", task.TaskID)
		}
		seen[task.TaskID] = true

		switch task.Type {
		case TaskCreateAlert:
			if task.Alert == nil {
				return fmt.Errorf("task %s: create_alert requires an alert section", task.TaskID)
			}
			if task.Alert.Message == "" {
				return fmt.Errorf("task %s: alert.message is required", task.TaskID)
			}
		case TaskCloseAlert:
			if task.Close == nil || task.Close.Identifier == "" {
				return fmt.Errorf("task %s: close_alert requires close.identifier", task.TaskID)
			}
		case TaskDeleteAlert:
			if task.Delete == nil || task.Delete.Identifier == "" {
				return fmt.Errorf("task %s: delete_alert requires delete.identifier", task.TaskID)
			}
		default:
			return fmt.Errorf("task %s: type must be 'create_alert', 'close_alert' or 'delete_alert'", task.TaskID)
		}

		// Note: connections missing from the file may still come from the
		// environment at run time, so only configured ones are checked here.
	}

	return nil
}
