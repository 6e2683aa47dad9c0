// Package secret resolves credentials referenced from configuration.
//
// A configured value is first expanded strictly against the environment
// (see ExpandEnvStrict), then any secret references in it are resolved by
// the provider they name:
//   - Full value: secretref:file:/run/secrets/portal_token
//   - Inline use: Bearer secretref:env:PORTAL_SESSION
//
// Providers for the environment and for files are built in; others can be
// registered on a Resolver.
package secret
