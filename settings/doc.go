// Package settings holds the local mirror of rendering state.
//
// A Snapshot carries everything needed to reproduce a rendering request
// without a round trip to the engine: the global parameters (default plane,
// color model, codomain, bit resolution) and one ChannelBinding per channel.
// Snapshots have value semantics through Copy and can be persisted as YAML.
//
// Only channel indexes and bit resolution are validated here. Windows and
// colors are accepted as given; the engine decides whether they are valid.
package settings
