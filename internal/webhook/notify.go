// Package webhook delivers board notifications to chat webhooks.
package webhook

import (
	"context"
	"errors"
)

// PressEvent is the notification emitted when a task button is pressed:
// the user has signalled "I am about to do this" ahead of confirmed
// completion.
type PressEvent struct {
	TaskName       string `json:"task_name"`
	AssignedTo     string `json:"assigned_to"`
	Category       string `json:"category"`
	ConfirmationID string `json:"confirmation_id"`
}

// Notifier receives press events published by the board
type Notifier interface {
	TaskPressed(ctx context.Context, ev PressEvent) error
}

// Multi fans a press event out to several notifiers, joining their errors
type Multi []Notifier

func (m Multi) TaskPressed(ctx context.Context, ev PressEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.TaskPressed(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
