// Package tui implements the full-screen terminal dashboard for lightstack.
//
// It is built on Bubble Tea and follows the Elm architecture: models hold all
// state, Update returns a new model plus commands, and View is a pure
// function of the model.
//
// # Screens
//
// The AppModel coordinates two screens:
//   - Discovery: browses the network for Home Assistant over mDNS, or takes
//     a URL typed by the user
//   - Dashboard: shows one card of the loaded dashboard file, connected to
//     Home Assistant over the websocket API
//
// Both screens render through RenderApplicationContainer, which places the
// screen content at a fixed offset so mouse coordinates can be mapped back
// onto the card.
//
// # Card rendering and actions
//
// RenderCard draws a card and builds an action.Node tree with the same
// geometry. A mouse click is hit-tested against that tree and the composed
// path is resolved to the innermost tagged element, so a click on a button
// label triggers the button. Key presses target the selected row directly
// and resolve through the nearest tagged ancestor.
//
// Every interaction carries an id; the dashboard claims it once, so a press
// and release of the same click never call a service twice.
//
// Actions run on command goroutines through an action.Executor. Its
// navigation, more-info and URL signals come back to the UI loop as
// messages.
//
// # Height calibration
//
// In total height mode the row height depends on the container insets. The
// dashboard schedules a calibration after each layout change and applies it
// once the frame has been rendered; a stale or late calibration is ignored.
//
// # Usage Example
//
//	err := tui.Run(tui.Options{
//		Dashboard: dash,
//		CardPath:  path,
//		URL:       "http://homeassistant.local:8123",
//		Token:     token,
//		Grid:      layout.DefaultGrid,
//		Logger:    logger,
//	})
package tui
