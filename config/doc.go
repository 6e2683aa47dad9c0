// Package config loads portal client settings from the environment.
//
// Values come from process environment variables prefixed PORTAL_, with
// optional .env files filling in anything the environment leaves unset.
package config
