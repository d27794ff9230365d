// Package config loads application settings from environment variables,
// an optional .env file and an optional config.yaml, and validates them.
//
// Every key can be set through an environment variable named after its path
// with the PREP_ prefix, for example PREP_LLM_GEMINI_API_KEY.
package config
