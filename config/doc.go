// Package config loads the rndsync YAML configuration.
//
// A missing file yields Default(). Session credentials may be written as
// environment references or secret references and are resolved by
// Config.ResolveSecrets:
//
//	session:
//	  token: secretref:env:RNDSYNC_SESSION_TOKEN
//	  signingKey: secretref:file:/run/secrets/rndsync-signing-key
package config
