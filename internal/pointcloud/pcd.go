package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// PCDType is the data encoding of an emitted PCD file.
type PCDType int

const (
	// PCDAscii writes one whitespace-separated point per line.
	PCDAscii PCDType = iota
	// PCDBinary writes packed little-endian point records.
	PCDBinary
)

func colorToPCDInt(pt Point) int {
	if !pt.HasColor {
		return 255 << 16
	}
	x := 0
	x |= int(pt.Color.R) << 16
	x |= int(pt.Color.G) << 8
	x |= int(pt.Color.B) << 0
	return x
}

// WritePCD serializes the cloud in PCD v.7 layout. Colored clouds carry the
// packed rgb field; colorless clouds emit x y z only.
func WritePCD(cloud *Cloud, out io.Writer, outputType PCDType) error {
	w := bufio.NewWriter(out)

	if _, err := fmt.Fprintf(w, "VERSION .7\n"); err != nil {
		return err
	}
	var err error
	if cloud.HasColor() {
		_, err = fmt.Fprintf(w, "FIELDS x y z rgb\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F I\n"+
			"COUNT 1 1 1 1\n")
	} else {
		_, err = fmt.Fprintf(w, "FIELDS x y z\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "WIDTH %d\nHEIGHT 1\nVIEWPOINT 0 0 0 1 0 0 0\nPOINTS %d\n", cloud.Size(), cloud.Size()); err != nil {
		return err
	}

	switch outputType {
	case PCDBinary:
		if _, err := fmt.Fprintf(w, "DATA binary\n"); err != nil {
			return err
		}
	case PCDAscii:
		if _, err := fmt.Fprintf(w, "DATA ascii\n"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported pcd output type %d", outputType)
	}

	if err := writePCDData(cloud, w, outputType); err != nil {
		return err
	}
	return w.Flush()
}

func writePCDData(cloud *Cloud, out io.Writer, pcdtype PCDType) error {
	var writeErr error
	cloud.Iterate(func(pt Point) bool {
		pos := pt.Position
		if cloud.HasColor() {
			c := colorToPCDInt(pt)
			switch pcdtype {
			case PCDBinary:
				buf := make([]byte, 16)
				binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(pos.X)))
				binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(pos.Y)))
				binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(pos.Z)))
				binary.LittleEndian.PutUint32(buf[12:], uint32(c))
				_, writeErr = out.Write(buf)
			case PCDAscii:
				_, writeErr = fmt.Fprintf(out, "%f %f %f %d\n", pos.X, pos.Y, pos.Z, c)
			}
		} else {
			switch pcdtype {
			case PCDBinary:
				buf := make([]byte, 12)
				binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(pos.X)))
				binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(pos.Y)))
				binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(pos.Z)))
				_, writeErr = out.Write(buf)
			case PCDAscii:
				_, writeErr = fmt.Fprintf(out, "%f %f %f\n", pos.X, pos.Y, pos.Z)
			}
		}
		return writeErr == nil
	})
	return writeErr
}
