// Package pointcloud decodes PLY mesh-exchange files and encodes geometry-only
// PCD point clouds. Only point positions and colors survive conversion.
package pointcloud
