package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-sound-tracer/pkg/core"
)

// ErrUnsupportedPLY is returned for PLY files this loader cannot read
var ErrUnsupportedPLY = errors.New("unsupported PLY file")

// PLYHeader is the parsed header of a PLY file
type PLYHeader struct {
	Format      string // "ascii", "binary_little_endian" or "binary_big_endian"
	Version     string
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty is one property line of the header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // type of the list count
}

// Mesh is the geometry read from a PLY file. Polygons are fan-triangulated.
type Mesh struct {
	Vertices []core.Vec3
	Faces    [][3]int
}

// LoadPLY reads vertex positions and faces from a PLY file
func LoadPLY(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return mesh, nil
}

// ReadPLY reads a PLY stream
func ReadPLY(r io.Reader) (*Mesh, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var elements elementReader
	switch header.Format {
	case "ascii":
		elements = &asciiReader{reader: reader}
	case "binary_little_endian":
		elements = &binaryReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		elements = &binaryReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedPLY, header.Format)
	}

	mesh := &Mesh{
		Vertices: make([]core.Vec3, 0, header.VertexCount),
		Faces:    make([][3]int, 0, header.FaceCount),
	}
	if err := readVertices(elements, header, mesh); err != nil {
		return nil, err
	}
	if err := readFaces(elements, header, mesh); err != nil {
		return nil, err
	}
	return mesh, nil
}

func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrUnsupportedPLY)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("header ended before end_header: %w", err)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("%w: no format line", ErrUnsupportedPLY)
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", strings.TrimSpace(line))
			}
			header.Format, header.Version = parts[1], parts[2]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("%w: element %q", ErrUnsupportedPLY, currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}
}

func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}
	if getTypeSize(parts[0]) == 0 {
		return PLYProperty{}, fmt.Errorf("%w: property type %q", ErrUnsupportedPLY, parts[0])
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

func readVertices(elements elementReader, header *PLYHeader, mesh *Mesh) error {
	for i := 0; i < header.VertexCount; i++ {
		var v core.Vec3
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if _, err := readList(elements, prop); err != nil {
					return fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			value, err := elements.scalar(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			switch prop.Name {
			case "x":
				v.X = value
			case "y":
				v.Y = value
			case "z":
				v.Z = value
			}
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}
	return elements.endElement()
}

func readFaces(elements elementReader, header *PLYHeader, mesh *Mesh) error {
	for i := 0; i < header.FaceCount; i++ {
		var indices []int
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := elements.scalar(prop.Type); err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}
			values, err := readList(elements, prop)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			if prop.Name == "vertex_indices" || prop.Name == "vertex_index" {
				indices = values
			}
		}
		if len(indices) < 3 {
			return fmt.Errorf("face %d has %d vertices", i, len(indices))
		}
		for _, index := range indices {
			if index < 0 || index >= len(mesh.Vertices) {
				return fmt.Errorf("face %d references vertex %d of %d", i, index, len(mesh.Vertices))
			}
		}
		for k := 1; k+1 < len(indices); k++ {
			mesh.Faces = append(mesh.Faces, [3]int{indices[0], indices[k], indices[k+1]})
		}
	}
	return elements.endElement()
}

func readList(elements elementReader, prop PLYProperty) ([]int, error) {
	count, err := elements.scalar(prop.ListType)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > 1<<16 {
		return nil, fmt.Errorf("invalid list length %v", count)
	}
	values := make([]int, int(count))
	for i := range values {
		value, err := elements.scalar(prop.Type)
		if err != nil {
			return nil, err
		}
		values[i] = int(value)
	}
	return values, nil
}

// getTypeSize returns the byte width of a PLY scalar type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// elementReader yields the scalars of the body in file order
type elementReader interface {
	scalar(dataType string) (float64, error)
	endElement() error
}

type asciiReader struct {
	reader *bufio.Reader
	fields []string
}

func (a *asciiReader) scalar(dataType string) (float64, error) {
	for len(a.fields) == 0 {
		line, err := a.reader.ReadString('\n')
		a.fields = strings.Fields(line)
		if len(a.fields) == 0 && err != nil {
			return 0, fmt.Errorf("unexpected end of data: %w", err)
		}
	}
	token := a.fields[0]
	a.fields = a.fields[1:]
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, token)
	}
	return value, nil
}

// endElement drops anything left on the current line
func (a *asciiReader) endElement() error {
	a.fields = nil
	return nil
}

type binaryReader struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryReader) scalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("%w: type %q", ErrUnsupportedPLY, dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.reader, data); err != nil {
		return 0, fmt.Errorf("unexpected end of data: %w", err)
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}

func (b *binaryReader) endElement() error { return nil }
