// Package scene models capture-session directories: discovery under a dataset
// root, camera-view enumeration, artifact naming policies, and the per-stage
// outcome type the pipeline reports with.
package scene
