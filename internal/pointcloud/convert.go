package pointcloud

import (
	"fmt"
	"os"
)

// ConvertPLYToPCD loads a PLY file and rewrites it as a PCD file at pcdPath,
// overwriting any existing file there. Any read or encode failure leaves no
// partial output behind.
func ConvertPLYToPCD(plyPath, pcdPath string, outputType PCDType) error {
	in, err := os.Open(plyPath)
	if err != nil {
		return fmt.Errorf("open ply: %w", err)
	}
	defer in.Close()

	cloud, err := ReadPLY(in)
	if err != nil {
		return fmt.Errorf("decode ply %s: %w", plyPath, err)
	}

	out, err := os.Create(pcdPath)
	if err != nil {
		return fmt.Errorf("create pcd: %w", err)
	}

	if err := WritePCD(cloud, out, outputType); err != nil {
		out.Close()
		os.Remove(pcdPath)
		return fmt.Errorf("encode pcd %s: %w", pcdPath, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(pcdPath)
		return fmt.Errorf("close pcd: %w", err)
	}
	return nil
}
