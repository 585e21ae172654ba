package renderer

import "errors"

var (
	// ErrResourceAllocation wraps every GPU texture, buffer or bind group creation failure.
	// The frame that hit it is aborted before anything is dispatched.
	ErrResourceAllocation = errors.New("renderer: resource allocation failed")

	// ErrPipelineNotRegistered is returned when a dispatch or draw names a pipeline key the
	// Renderer has no GPU pipeline for.
	ErrPipelineNotRegistered = errors.New("renderer: pipeline not registered")

	// ErrBindingContract is returned when a compute shader does not declare the render target,
	// camera and spheres bindings with the expected types and sizes.
	ErrBindingContract = errors.New("renderer: shader violates binding contract")
)
