// Package action resolves pointer and key interactions on a light stack card
// into actions and executes them against Home Assistant.
//
// The renderer describes each frame as a tree of Nodes. A row node carries
// TagRow and contains one node per button (more-info, name, on, off), which
// may in turn contain untagged decoration such as labels and icons. A click is
// hit-tested against this tree to build an Event with a composed path, and
// Resolve picks the innermost tagged node on that path.
//
// Both the row and its buttons may receive the same interaction. The row
// handler is the one that acts; a Dispatcher keyed by the interaction id makes
// sure the action runs exactly once.
//
// Executor maps tags to Home Assistant service calls and UI signals:
//
//	more-info  open the details panel for the row entity
//	name       navigate (tap_action, then navigation_path), else more-info
//	on / off   run on_action/off_action, else homeassistant.turn_on/turn_off
//
// Execution never fails outward. Service errors are logged and dropped.
package action
