package chart

// Option applies a configuration option to the renderer.
type Option func(*Renderer)

// WithSize sets the canvas size in pixels. Non-positive values keep the default.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}
