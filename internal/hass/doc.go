// Package hass is a small client for the Home Assistant websocket API.
//
// It covers what a light dashboard needs: authentication with a long-lived
// access token, get_states, subscribe_events for state_changed, call_service
// and ping.
//
// # Protocol
//
// After the websocket upgrade the server sends auth_required. The client
// answers with {"type":"auth","access_token":...} and expects auth_ok or
// auth_invalid. Every later command carries an increasing integer id; the
// reply is a result message with the same id:
//
//	{"id": 3, "type": "result", "success": true, "result": ...}
//	{"id": 4, "type": "result", "success": false, "error": {"code": "not_found", "message": "..."}}
//
// Subscriptions deliver event messages carrying the id of the subscribe
// command. Incoming frames are read with gjson so unknown fields cost nothing.
//
// # Errors
//
// All operations return *Error. Authentication failures are never retried;
// connection failures are retried by Connect with exponential backoff.
//
// # Usage
//
//	client, err := hass.NewClient("http://homeassistant.local:8123", token)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	states, err := client.GetStates(ctx)
//	changes, err := client.SubscribeStates(ctx)
//
// Client implements action.ServiceCaller.
package hass
