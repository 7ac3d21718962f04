// Package config reads and writes lightstack card files and settings.
//
// A card file is YAML (or TOML when it ends in .toml) and holds either a bare
// card or a list of views:
//
//	type: custom:lightstack
//	style: glass
//	height_mode: total
//	target_total_height: 350px
//	items:
//	  - entity: light.kitchen
//	  - entity: light.hall
//	    name: Hallway
//	    navigation_path: /hall
//
//	views:
//	  - path: /
//	    card: {items: [{entity: light.kitchen}]}
//	  - path: /hall
//	    title: Hallway
//	    card: {items: [{entity: light.hall}]}
//
// Load normalizes what it reads; Save strips defaults so files stay minimal.
// Watch reloads a card file when an editor saves it.
//
// # File Locations
//
//   - Linux: $XDG_CONFIG_HOME/lightstack/ or $HOME/.config/lightstack/
//   - macOS: $HOME/.config/lightstack/
//   - Windows: %LOCALAPPDATA%\lightstack\
//
// The directory holds card.yaml (the default card) and settings.yaml (servers
// seen before and preferences).
//
// # Security
//
// Access tokens are never written to disk. They come from --token,
// LIGHTSTACK_TOKEN or an interactive prompt.
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and are atomic (write then rename).
package config
