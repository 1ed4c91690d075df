package operator

import (
	"context"

	"github.com/alertops/opsgenie/internal/types"
)

// CreateAlertOperator creates an alert
type CreateAlertOperator struct {
	base
	types.AlertRequest
}

// NewCreateAlertOperator creates a create-alert operator
func NewCreateAlertOperator(taskID string, req types.AlertRequest, opts ...Option) *CreateAlertOperator {
	return &CreateAlertOperator{
		base:         newBase(taskID, opts),
		AlertRequest: req,
	}
}

// BuildPayload returns the create-alert body
func (o *CreateAlertOperator) BuildPayload() types.Payload {
	return o.AlertRequest.Payload()
}

// Execute creates the alert and returns the hook's response
func (o *CreateAlertOperator) Execute(ctx context.Context) (*types.Response, error) {
	h, err := o.hook()
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("alias", o.Alias).
		Str("priority", o.Priority).
		Msg("Creating alert")

	return h.CreateAlert(ctx, o.BuildPayload())
}

// CloseAlertOperator closes an existing alert
type CloseAlertOperator struct {
	base
	types.CloseAlertRequest
}

// NewCloseAlertOperator creates a close-alert operator
func NewCloseAlertOperator(taskID string, req types.CloseAlertRequest, opts ...Option) *CloseAlertOperator {
	return &CloseAlertOperator{
		base:              newBase(taskID, opts),
		CloseAlertRequest: req,
	}
}

// BuildPayload returns the close-alert body
func (o *CloseAlertOperator) BuildPayload() types.Payload {
	return o.CloseAlertRequest.Payload()
}

// Execute closes the alert and returns the hook's response
func (o *CloseAlertOperator) Execute(ctx context.Context) (*types.Response, error) {
	h, err := o.hook()
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("identifier", o.Identifier).
		Str("identifier_type", o.IdentifierType).
		Msg("Closing alert")

	return h.CloseAlert(ctx, o.Identifier, o.IdentifierType, o.BuildPayload())
}

// DeleteAlertOperator deletes an alert. The request is forwarded to the
// hook as is.
type DeleteAlertOperator struct {
	base
	types.DeleteAlertRequest
}

// NewDeleteAlertOperator creates a delete-alert operator
func NewDeleteAlertOperator(taskID string, req types.DeleteAlertRequest, opts ...Option) *DeleteAlertOperator {
	return &DeleteAlertOperator{
		base:               newBase(taskID, opts),
		DeleteAlertRequest: req,
	}
}

// Execute deletes the alert and returns the hook's response
func (o *DeleteAlertOperator) Execute(ctx context.Context) (*types.Response, error) {
	h, err := o.hook()
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("identifier", o.Identifier).
		Str("identifier_type", o.IdentifierType).
		Msg("Deleting alert")

	return h.DeleteAlert(ctx, o.DeleteAlertRequest)
}
