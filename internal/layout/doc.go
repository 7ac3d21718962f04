// Package layout computes row heights and button sizes for a light stack card.
//
// Calibrate reconciles a requested height with the measured container
// insets. In total mode the insets are only known after the container has
// been drawn once, so callers run calibration as a deferred step after the
// first render (see package stack).
//
// All values are in pixels. Grid maps them onto terminal cells.
package layout
