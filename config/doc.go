// Package config loads process configuration for the tubeanalyst binaries.
//
// Values are layered, later sources winning: built-in defaults, an optional
// YAML file, optional .env files, and TUBEANALYST_* environment variables
// (for example TUBEANALYST_SESSION_MAX_SESSIONS=500 or
// TUBEANALYST_LLM_PROVIDER=openai).
package config
