package renderer

import "errors"

var (
	// ErrInvalidResolution is returned when the image width or height is not positive
	ErrInvalidResolution = errors.New("renderer: width and height must be positive")

	// ErrNoScene is returned when tracing is requested without a scene
	ErrNoScene = errors.New("renderer: no scene")

	// ErrNoCamera is returned when tracing is requested without a camera
	ErrNoCamera = errors.New("renderer: no camera")

	// ErrInterrupted is returned by the progressive driver when its context ends
	ErrInterrupted = errors.New("renderer: rendering interrupted")
)
