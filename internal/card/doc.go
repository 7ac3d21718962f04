// Package card defines the configuration model of a light stack card.
//
// A card is a vertical list of rows, one per Home Assistant entity, each with
// a state icon, a name and ON/OFF buttons. The configuration is authored by
// hand (YAML or TOML) or through the `lightstack rows` commands, and consumed
// by the stack widget and the action executor.
//
// # Configuration Shape
//
//	style: activhome
//	height_mode: total
//	target_total_height: 350
//	items:
//	  - entity: light.kitchen
//	    name: Kitchen
//	    navigation_path: /lights/kitchen
//	  - entity: light.hall
//	    on_action:
//	      action: call-service
//	      service: light.turn_on
//	      target:
//	        entity_id: light.hall
//
// Numeric fields accept plain numbers as well as strings such as "350px".
//
// # Lifecycle
//
// Configurations are normalized once with Normalize, which is also the only
// place where a configuration error is returned to the caller. Everything
// downstream treats a normalized CardConfig as immutable until the next
// explicit reconfiguration.
//
// Clean applies the inverse transformation used when a configuration is
// written back to disk: default values are dropped so saved files stay
// minimal.
package card
