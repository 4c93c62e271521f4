// Package descriptor emits .fo3d scene-description files that reference a
// scene's converted point cloud for downstream visualization.
package descriptor
