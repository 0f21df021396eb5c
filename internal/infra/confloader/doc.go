// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (SESSIONGATE_API_URL -> api.url)
//  3. YAML configuration file
//  4. Defaults (LoadMap before anything else)
//
// Keys never contain underscores, so every environment variable maps to a
// dotted key by splitting on "_". A Watcher reports edits to the
// configuration file so long-running sessions can reload.
package confloader
