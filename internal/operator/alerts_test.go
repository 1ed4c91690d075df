package operator

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertops/opsgenie/internal/types"
)

type closeCall struct {
	identifier     string
	identifierType string
	payload        types.Payload
}

// fakeHook records every call and answers with resp / err.
type fakeHook struct {
	resp *types.Response
	err  error

	created []types.Payload
	closed  []closeCall
	deleted []types.DeleteAlertRequest
}

func (f *fakeHook) CreateAlert(_ context.Context, payload types.Payload) (*types.Response, error) {
	f.created = append(f.created, payload)
	return f.resp, f.err
}

func (f *fakeHook) CloseAlert(_ context.Context, identifier, identifierType string, payload types.Payload) (*types.Response, error) {
	f.closed = append(f.closed, closeCall{identifier, identifierType, payload})
	return f.resp, f.err
}

func (f *fakeHook) DeleteAlert(_ context.Context, req types.DeleteAlertRequest) (*types.Response, error) {
	f.deleted = append(f.deleted, req)
	return f.resp, f.err
}

// factoryFor returns a factory handing out h and the list of conn ids it was asked for.
func factoryFor(h AlertHook) (HookFactory, *[]string) {
	var connIDs []string
	return func(connID string) (AlertHook, error) {
		connIDs = append(connIDs, connID)
		return h, nil
	}, &connIDs
}

var createConfig = types.AlertRequest{
	Message:     "An example alert message",
	Alias:       "Life is too short for no alias",
	Description: "Every alert needs a description",
	Responders: []types.Descriptor{
		{"id": "4513b7ea-3b91-438f-b7e4-e3e54af9147c", "type": "team"},
		{"name": "NOC", "type": "team"},
		{"id": "bb4d9938-c3c2-455d-aaab-727aa701c0d8", "type": "user"},
		{"username": "trinity@opsgenie.com", "type": "user"},
		{"id": "aee8a0de-c80f-4515-a232-501c0bc9d715", "type": "escalation"},
		{"name": "Nightwatch Escalation", "type": "escalation"},
		{"id": "80564037-1984-4f38-b98e-8a1f662df552", "type": "schedule"},
		{"name": "First Responders Schedule", "type": "schedule"},
	},
	VisibleTo: []types.Descriptor{
		{"id": "4513b7ea-3b91-438f-b7e4-e3e54af9147c", "type": "team"},
		{"name": "rocket_team", "type": "team"},
		{"id": "bb4d9938-c3c2-455d-aaab-727aa701c0d8", "type": "user"},
		{"username": "trinity@opsgenie.com", "type": "user"},
	},
	Actions:  []string{"Restart", "AnExampleAction"},
	Tags:     []string{"OverwriteQuietHours", "Critical"},
	Details:  map[string]string{"key1": "value1", "key2": "value2"},
	Entity:   "An example entity",
	Source:   "alertops",
	Priority: "P1",
	User:     "Jesse",
	Note:     "Write this down",
}

func TestCreateAlertOperator_BuildPayload(t *testing.T) {
	op := NewCreateAlertOperator("opsgenie_alert_job", createConfig)

	want := types.Payload{
		"message":     createConfig.Message,
		"alias":       createConfig.Alias,
		"description": createConfig.Description,
		"responders":  createConfig.Responders,
		"visible_to":  createConfig.VisibleTo,
		"actions":     createConfig.Actions,
		"tags":        createConfig.Tags,
		"details":     createConfig.Details,
		"entity":      createConfig.Entity,
		"source":      createConfig.Source,
		"priority":    createConfig.Priority,
		"user":        createConfig.User,
		"note":        createConfig.Note,
	}
	assert.Equal(t, want, op.BuildPayload())
}

func TestCreateAlertOperator_Properties(t *testing.T) {
	op := NewCreateAlertOperator("opsgenie_alert_job", createConfig)

	assert.Equal(t, "opsgenie_alert_job", op.TaskID)
	assert.Equal(t, "opsgenie_alert_job", op.ID())
	assert.Equal(t, "opsgenie_default", op.ConnID)
	assert.Equal(t, createConfig.Message, op.Message)
	assert.Equal(t, createConfig.Alias, op.Alias)
	assert.Equal(t, createConfig.Description, op.Description)
	assert.Equal(t, createConfig.Responders, op.Responders)
	assert.Equal(t, createConfig.VisibleTo, op.VisibleTo)
	assert.Equal(t, createConfig.Actions, op.Actions)
	assert.Equal(t, createConfig.Tags, op.Tags)
	assert.Equal(t, createConfig.Details, op.Details)
	assert.Equal(t, createConfig.Entity, op.Entity)
	assert.Equal(t, createConfig.Source, op.Source)
	assert.Equal(t, createConfig.Priority, op.Priority)
	assert.Equal(t, createConfig.User, op.User)
	assert.Equal(t, createConfig.Note, op.Note)
}

func TestCreateAlertOperator_Execute(t *testing.T) {
	want := &types.Response{Result: "Request will be processed", RequestID: "r1"}
	h := &fakeHook{resp: want}
	factory, connIDs := factoryFor(h)

	op := NewCreateAlertOperator("job", types.AlertRequest{Message: "m", Priority: "P2"}, WithHookFactory(factory))
	got, err := op.Execute(context.Background())
	require.NoError(t, err)

	assert.Same(t, want, got)
	assert.Equal(t, []string{"opsgenie_default"}, *connIDs)
	assert.Equal(t, []types.Payload{{"message": "m", "priority": "P2"}}, h.created)
}

func TestCreateAlertOperator_ConnIDOverride(t *testing.T) {
	factory, connIDs := factoryFor(&fakeHook{})

	op := NewCreateAlertOperator("job", types.AlertRequest{Message: "m"}, WithConnID("opsgenie_eu"), WithHookFactory(factory))
	assert.Equal(t, "opsgenie_eu", op.ConnID)

	_, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"opsgenie_eu"}, *connIDs)
}

func TestWithConnID_EmptyKeepsDefault(t *testing.T) {
	op := NewCreateAlertOperator("job", types.AlertRequest{}, WithConnID(""))
	assert.Equal(t, DefaultConnID, op.ConnID)
}

func TestCloseAlertOperator_BuildPayload(t *testing.T) {
	op := NewCloseAlertOperator("opsgenie_close_alert_job", types.CloseAlertRequest{
		Identifier: "id",
		User:       "example_user",
		Note:       "my_closing_note",
		Source:     "some_source",
	})

	want := types.Payload{
		"user":   "example_user",
		"note":   "my_closing_note",
		"source": "some_source",
	}
	assert.Equal(t, want, op.BuildPayload())
}

func TestCloseAlertOperator_Properties(t *testing.T) {
	op := NewCloseAlertOperator("opsgenie_test_properties_job", types.CloseAlertRequest{
		Identifier:     "id",
		IdentifierType: "alias",
		User:           "example_user",
		Note:           "my_closing_note",
		Source:         "some_source",
	})

	assert.Equal(t, "opsgenie_default", op.ConnID)
	assert.Equal(t, "id", op.Identifier)
	assert.Equal(t, "alias", op.IdentifierType)
	assert.Equal(t, "example_user", op.User)
	assert.Equal(t, "my_closing_note", op.Note)
	assert.Equal(t, "some_source", op.Source)
}

func TestCloseAlertOperator_Execute(t *testing.T) {
	want := &types.Response{Result: "Request will be processed"}
	h := &fakeHook{resp: want}
	factory, connIDs := factoryFor(h)

	op := NewCloseAlertOperator("job", types.CloseAlertRequest{
		Identifier:     "core-sw-1",
		IdentifierType: "alias",
		Note:           "recovered",
	}, WithHookFactory(factory))

	got, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, []string{"opsgenie_default"}, *connIDs)
	assert.Equal(t, []closeCall{{"core-sw-1", "alias", types.Payload{"note": "recovered"}}}, h.closed)
}

func TestDeleteAlertOperator_Execute(t *testing.T) {
	want := &types.Response{Result: "Request will be processed", RequestID: "d1"}
	h := &fakeHook{resp: want}
	factory, connIDs := factoryFor(h)

	op := NewDeleteAlertOperator("opsgenie_test_delete_job", types.DeleteAlertRequest{
		Identifier:     "id",
		IdentifierType: "id",
		User:           "name",
		Source:         "source",
	}, WithHookFactory(factory))

	got, err := op.Execute(context.Background())
	require.NoError(t, err)

	assert.Same(t, want, got)
	assert.Equal(t, []string{"opsgenie_default"}, *connIDs)
	assert.Equal(t, []types.DeleteAlertRequest{{
		Identifier:     "id",
		IdentifierType: "id",
		User:           "name",
		Source:         "source",
	}}, h.deleted)
	assert.Empty(t, h.created)
	assert.Empty(t, h.closed)
}

func TestExecute_HookErrorPassesThrough(t *testing.T) {
	hookErr := errors.New("boom")
	factory, _ := factoryFor(&fakeHook{err: hookErr})

	ops := []Operator{
		NewCreateAlertOperator("c", types.AlertRequest{Message: "m"}, WithHookFactory(factory)),
		NewCloseAlertOperator("cl", types.CloseAlertRequest{Identifier: "x"}, WithHookFactory(factory)),
		NewDeleteAlertOperator("d", types.DeleteAlertRequest{Identifier: "x"}, WithHookFactory(factory)),
	}
	for _, op := range ops {
		t.Run(op.ID(), func(t *testing.T) {
			resp, err := op.Execute(context.Background())
			assert.Nil(t, resp)
			assert.Same(t, hookErr, err)
		})
	}
}

func TestExecute_FactoryErrorPassesThrough(t *testing.T) {
	factoryErr := errors.New("no such connection")
	factory := func(string) (AlertHook, error) { return nil, factoryErr }

	op := NewDeleteAlertOperator("d", types.DeleteAlertRequest{Identifier: "x"}, WithHookFactory(factory))
	_, err := op.Execute(context.Background())
	assert.Same(t, factoryErr, err)
}

func TestEnvHookFactory(t *testing.T) {
	t.Setenv("OPSGENIE_DEFAULT_API_KEY", "k")

	h, err := EnvHookFactory(zerolog.Nop())(DefaultConnID)
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = EnvHookFactory(zerolog.Nop())("missing_conn")
	assert.Error(t, err)
}
