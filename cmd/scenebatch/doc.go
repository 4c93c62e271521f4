// Command scenebatch processes multi-camera driving-scene captures into
// per-view videos and point-cloud scene descriptors.
package main
