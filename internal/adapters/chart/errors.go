package chart

import "errors"

// ErrRender is returned when a chart cannot be drawn.
var ErrRender = errors.New("chart: render failed")
