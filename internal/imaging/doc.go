// Package imaging holds the image helpers used around the annotation tools:
// loading and saving, hue remapping of masked regions, the synthetic color
// bar and named color table, a small heatmap renderer and caption drawing
// for review previews.
//
// # Color Spaces
//
// HSV values follow the 8-bit convention used by most labeling pipelines:
//   - H: 0-180 (degrees halved)
//   - S: 0-255
//   - V: 0-255
//
// Triplets returned by ColorBar are ordered by the bar's Mode, either
// R,G,B or B,G,R. Everything else in this package uses color.RGBA.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless
// and never modify their input images.
package imaging
