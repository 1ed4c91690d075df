package types

// Descriptor references a team, user, escalation or schedule by one of
// id, name or username, plus its type. Keys are passed through as given.
type Descriptor map[string]string

// Payload is the request body of an alert call, keyed by field name.
type Payload map[string]any

// AlertRequest holds the fields of a new alert
type AlertRequest struct {
	Message     string            `yaml:"message"`
	Alias       string            `yaml:"alias,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Responders  []Descriptor      `yaml:"responders,omitempty"`
	VisibleTo   []Descriptor      `yaml:"visible_to,omitempty"`
	Actions     []string          `yaml:"actions,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Details     map[string]string `yaml:"details,omitempty"`
	Entity      string            `yaml:"entity,omitempty"`
	Source      string            `yaml:"source,omitempty"`
	Priority    string            `yaml:"priority,omitempty"`
	User        string            `yaml:"user,omitempty"`
	Note        string            `yaml:"note,omitempty"`
}

// Payload returns the create-alert body. Only fields that were set are present.
func (r AlertRequest) Payload() Payload {
	p := Payload{}
	putString(p, "message", r.Message)
	putString(p, "alias", r.Alias)
	putString(p, "description", r.Description)
	if len(r.Responders) > 0 {
		p["responders"] = r.Responders
	}
	if len(r.VisibleTo) > 0 {
		p["visible_to"] = r.VisibleTo
	}
	if len(r.Actions) > 0 {
		p["actions"] = r.Actions
	}
	if len(r.Tags) > 0 {
		p["tags"] = r.Tags
	}
	if len(r.Details) > 0 {
		p["details"] = r.Details
	}
	putString(p, "entity", r.Entity)
	putString(p, "source", r.Source)
	putString(p, "priority", r.Priority)
	putString(p, "user", r.User)
	putString(p, "note", r.Note)
	return p
}

// CloseAlertRequest addresses an alert to close. Identifier and
// IdentifierType select the alert and are not part of the body.
type CloseAlertRequest struct {
	Identifier     string `yaml:"identifier"`
	IdentifierType string `yaml:"identifier_type,omitempty"` // "id", "alias" or "tiny"
	User           string `yaml:"user,omitempty"`
	Note           string `yaml:"note,omitempty"`
	Source         string `yaml:"source,omitempty"`
}

// Payload returns the close-alert body
func (r CloseAlertRequest) Payload() Payload {
	p := Payload{}
	putString(p, "user", r.User)
	putString(p, "note", r.Note)
	putString(p, "source", r.Source)
	return p
}

// DeleteAlertRequest addresses an alert to delete. It has no body; every
// field travels as a path or query parameter.
type DeleteAlertRequest struct {
	Identifier     string `yaml:"identifier"`
	IdentifierType string `yaml:"identifier_type,omitempty"`
	User           string `yaml:"user,omitempty"`
	Source         string `yaml:"source,omitempty"`
}

// Response is the acknowledgement returned by the alert API.
// Opsgenie processes alert requests asynchronously; RequestID can be
// used to look the outcome up later.
type Response struct {
	Result     string  `json:"result"`
	Took       float64 `json:"took"`
	RequestID  string  `json:"requestId"`
	StatusCode int     `json:"-"`
}

func putString(p Payload, key, val string) {
	if val != "" {
		p[key] = val
	}
}
