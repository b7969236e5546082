package client

import (
	"context"
	"errors"
	"sync"
)

// FormState is the lifecycle of a submittable form.
type FormState int

const (
	FormEditing FormState = iota
	FormSubmitting
	FormSuccess
)

func (s FormState) String() string {
	switch s {
	case FormEditing:
		return "editing"
	case FormSubmitting:
		return "submitting"
	case FormSuccess:
		return "success"
	default:
		return "unknown"
	}
}

var (
	ErrFormBusy      = errors.New("form is already submitting")
	ErrFormSubmitted = errors.New("form was already submitted; reset it first")
)

// Form moves Editing -> Submitting -> Success, or back to Editing carrying the failure and any
// per-field errors from the API.
type Form[T any] struct {
	mu          sync.Mutex
	initial     T
	values      T
	state       FormState
	err         error
	fieldErrors map[string][]string
}

func NewForm[T any](initial T) *Form[T] {
	return &Form[T]{initial: initial, values: initial}
}

func (f *Form[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Edit changes values; it is only allowed while editing.
func (f *Form[T]) Edit(fn func(*T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	fn(&f.values)
	return nil
}

// Submit runs fn with a snapshot of the values. fn's error is returned as is.
func (f *Form[T]) Submit(ctx context.Context, fn func(context.Context, T) error) error {
	f.mu.Lock()
	if err := f.editableLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = FormSubmitting
	values := f.values
	f.mu.Unlock()

	err := fn(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormEditing
		f.err = err
		f.fieldErrors = FieldErrors(err)
		return err
	}
	f.state = FormSuccess
	f.err = nil
	f.fieldErrors = nil
	return nil
}

// Err is the last submission failure.
func (f *Form[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// FieldError returns the messages for one field of the last failure.
func (f *Form[T]) FieldError(field string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrors[field]
}

func (f *Form[T]) FieldErrors() map[string][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// Reset restores the initial values and returns to editing. It is refused mid-submit.
func (f *Form[T]) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	f.values = f.initial
	f.state = FormEditing
	f.err = nil
	f.fieldErrors = nil
	return nil
}

func (f *Form[T]) editableLocked() error {
	switch f.state {
	case FormSubmitting:
		return ErrFormBusy
	case FormSuccess:
		return ErrFormSubmitted
	}
	return nil
}
