package model

import "errors"

// Outcomes of an image lookup that did not produce an upgraded image
var (
	ErrNetwork     = errors.New("image search request failed")
	ErrDecode      = errors.New("could not decode image search response")
	ErrEmptyResult = errors.New("image search returned no usable path")
	ErrAborted     = errors.New("image resolution aborted")
)

// ErrNotFound is returned when the catalog has no movie with the requested ID
var ErrNotFound = errors.New("movie not found")
