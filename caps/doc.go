// Package caps groups the built-in capability providers: kv, clock, random,
// logging, and terminal. Each subpackage implements capability.Provider with
// its own per-instance State type and wires its guest interface through the
// linker under a versioned "wippy:caps/..." namespace.
package caps
