// Package stack holds the state of one light stack card between renders.
//
// A Widget combines a normalized card configuration with the latest entity
// states and produces RowView values for the renderer. It also owns the
// deferred height calibration: in total mode the row height depends on the
// container insets, which are only known after the card has been drawn once.
// The renderer calls ScheduleCalibration before drawing and RunCalibration
// with the measured insets afterwards:
//
//	gen, needed := w.ScheduleCalibration()
//	// ... render ...
//	if needed {
//		w.RunCalibration(gen, measured)
//	}
//
// RunCalibration is a no-op once the widget is closed or when the
// configuration changed in between, so late timer callbacks are harmless.
package stack
