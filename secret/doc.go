// Package secret resolves credentials referenced from configuration.
//
// Configuration values go through strict environment expansion first (see
// ExpandEnvStrict). A value of the form
//
//	secretref:<provider>:<ref>
//
// is then resolved by the named Provider. Two providers are included:
//
//   - env:  secretref:env:RNDSYNC_SESSION_TOKEN reads an environment variable.
//   - file: secretref:file:/run/secrets/signing-key reads a file and trims the
//     trailing newline.
//
// Providers are passed to NewResolver explicitly; there is no global registry.
package secret
