// Package colmap shells out to COLMAP's model_converter to export a sparse
// structure-from-motion model as a PLY mesh-exchange file.
package colmap
