// Package pipeline sequences the three per-scene stages: video synthesis,
// sparse-reconstruction conversion, and scene-descriptor emission. Failures
// surface as outcomes, never as errors, so one bad scene cannot stop a batch.
package pipeline
