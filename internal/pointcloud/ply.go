package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// plyFormat identifies the vertex data encoding declared in the header.
type plyFormat int

const (
	plyAscii plyFormat = iota
	plyBinaryLittleEndian
)

type plyProperty struct {
	name string
	size int
	kind byte // 'f' float, 'i' integer
}

type plyHeader struct {
	format      plyFormat
	vertexCount int
	properties  []plyProperty
}

// ReadPLY decodes the vertex element of a PLY file into a Cloud. Both ascii
// and binary_little_endian encodings are handled; COLMAP emits the latter.
// Properties other than x/y/z and red/green/blue are decoded and discarded.
func ReadPLY(r io.Reader) (*Cloud, error) {
	in := bufio.NewReader(r)

	header, err := parsePLYHeader(in)
	if err != nil {
		return nil, err
	}

	switch header.format {
	case plyAscii:
		return readPLYAscii(in, header)
	case plyBinaryLittleEndian:
		return readPLYBinary(in, header)
	default:
		return nil, fmt.Errorf("unsupported ply format")
	}
}

func parsePLYHeader(in *bufio.Reader) (plyHeader, error) {
	header := plyHeader{vertexCount: -1}

	magic, err := readHeaderLine(in)
	if err != nil {
		return header, err
	}
	if magic != "ply" {
		return header, fmt.Errorf("not a ply file (leading line %q)", magic)
	}

	inVertexElement := false
	for {
		line, err := readHeaderLine(in)
		if err != nil {
			return header, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
		case "format":
			if len(fields) < 2 {
				return header, fmt.Errorf("malformed format line %q", line)
			}
			switch fields[1] {
			case "ascii":
				header.format = plyAscii
			case "binary_little_endian":
				header.format = plyBinaryLittleEndian
			default:
				return header, fmt.Errorf("unsupported ply format %q", fields[1])
			}
		case "element":
			if len(fields) < 3 {
				return header, fmt.Errorf("malformed element line %q", line)
			}
			if fields[1] == "vertex" {
				count, err := strconv.Atoi(fields[2])
				if err != nil || count < 0 {
					return header, fmt.Errorf("malformed vertex count %q", fields[2])
				}
				header.vertexCount = count
				inVertexElement = true
			} else {
				// Vertices always lead in COLMAP output; trailing elements
				// (faces, edges) are never read.
				inVertexElement = false
			}
		case "property":
			if !inVertexElement {
				continue
			}
			if len(fields) < 3 {
				return header, fmt.Errorf("malformed property line %q", line)
			}
			if fields[1] == "list" {
				return header, fmt.Errorf("list property %q not supported on vertices", line)
			}
			prop, err := parsePLYProperty(fields[1], fields[len(fields)-1])
			if err != nil {
				return header, err
			}
			header.properties = append(header.properties, prop)
		case "end_header":
			if header.vertexCount < 0 {
				return header, fmt.Errorf("ply header declares no vertex element")
			}
			if len(header.properties) == 0 {
				return header, fmt.Errorf("ply vertex element declares no properties")
			}
			return header, nil
		default:
			return header, fmt.Errorf("unrecognized header line %q", line)
		}
	}
}

func readHeaderLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read ply header: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func parsePLYProperty(typeName, propName string) (plyProperty, error) {
	prop := plyProperty{name: propName}
	switch typeName {
	case "float", "float32":
		prop.size, prop.kind = 4, 'f'
	case "double", "float64":
		prop.size, prop.kind = 8, 'f'
	case "char", "int8", "uchar", "uint8":
		prop.size, prop.kind = 1, 'i'
	case "short", "int16", "ushort", "uint16":
		prop.size, prop.kind = 2, 'i'
	case "int", "int32", "uint", "uint32":
		prop.size, prop.kind = 4, 'i'
	default:
		return prop, fmt.Errorf("unsupported ply property type %q", typeName)
	}
	return prop, nil
}

func readPLYAscii(in *bufio.Reader, header plyHeader) (*Cloud, error) {
	cloud := New(header.vertexCount)
	values := make([]float64, len(header.properties))
	for i := 0; i < header.vertexCount; i++ {
		line, err := in.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return nil, fmt.Errorf("read vertex %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < len(header.properties) {
			return nil, fmt.Errorf("vertex %d has %d values, want %d", i, len(fields), len(header.properties))
		}
		for j := range header.properties {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("vertex %d property %q: %w", i, header.properties[j].name, err)
			}
			values[j] = v
		}
		cloud.Add(assemblePoint(header.properties, values))
	}
	return cloud, nil
}

func readPLYBinary(in *bufio.Reader, header plyHeader) (*Cloud, error) {
	recordSize := 0
	for _, prop := range header.properties {
		recordSize += prop.size
	}

	cloud := New(header.vertexCount)
	record := make([]byte, recordSize)
	values := make([]float64, len(header.properties))
	for i := 0; i < header.vertexCount; i++ {
		if _, err := io.ReadFull(in, record); err != nil {
			return nil, fmt.Errorf("read vertex %d: %w", i, err)
		}
		offset := 0
		for j, prop := range header.properties {
			values[j] = decodeScalar(record[offset:offset+prop.size], prop)
			offset += prop.size
		}
		cloud.Add(assemblePoint(header.properties, values))
	}
	return cloud, nil
}

func decodeScalar(raw []byte, prop plyProperty) float64 {
	switch {
	case prop.kind == 'f' && prop.size == 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
	case prop.kind == 'f' && prop.size == 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw))
	case prop.size == 1:
		return float64(raw[0])
	case prop.size == 2:
		return float64(binary.LittleEndian.Uint16(raw))
	default:
		return float64(binary.LittleEndian.Uint32(raw))
	}
}

func assemblePoint(props []plyProperty, values []float64) Point {
	var pt Point
	var r, g, b float64
	colorParts := 0
	for i, prop := range props {
		switch prop.name {
		case "x":
			pt.Position = r3.Vector{X: values[i], Y: pt.Position.Y, Z: pt.Position.Z}
		case "y":
			pt.Position = r3.Vector{X: pt.Position.X, Y: values[i], Z: pt.Position.Z}
		case "z":
			pt.Position = r3.Vector{X: pt.Position.X, Y: pt.Position.Y, Z: values[i]}
		case "red", "r", "diffuse_red":
			r = values[i]
			colorParts++
		case "green", "g", "diffuse_green":
			g = values[i]
			colorParts++
		case "blue", "b", "diffuse_blue":
			b = values[i]
			colorParts++
		}
	}
	if colorParts == 3 {
		pt.Color = color.NRGBA{R: clampColor(r), G: clampColor(g), B: clampColor(b), A: 255}
		pt.HasColor = true
	}
	return pt
}

func clampColor(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
