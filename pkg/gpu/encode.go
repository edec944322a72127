package gpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/x448/float16"
)

var logger = log.New("gpu")

// Section is one named, little-endian encoded buffer
type Section struct {
	Name string
	Data []byte
}

// Sections encodes every buffer in binding order
func (b *Buffers) Sections() ([]Section, error) {
	parts := []struct {
		name string
		data any
	}{
		{"input.bin", &b.Input},
		{"spheres.bin", b.Spheres},
		{"planes.bin", b.Planes},
		{"triangles.bin", b.Triangles},
		{"nodes.bin", b.Nodes},
		{"materials.bin", b.Materials},
		{"lights.bin", b.Lights},
	}

	sections := make([]Section, 0, len(parts))
	for _, part := range parts {
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, part.data); err != nil {
			return nil, fmt.Errorf("gpu: encoding %s: %w", part.name, err)
		}
		sections = append(sections, Section{Name: part.name, Data: buf.Bytes()})
	}
	return sections, nil
}

// WriteZip stores every buffer section as a file in a zip archive
func (b *Buffers) WriteZip(w io.Writer) error {
	sections, err := b.Sections()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, section := range sections {
		f, err := zw.Create(section.Name)
		if err != nil {
			return err
		}
		if _, err := f.Write(section.Data); err != nil {
			return err
		}
		logger.Debugf("wrote %s (%d bytes)", section.Name, len(section.Data))
	}
	return zw.Close()
}

// ReadZip returns the sections stored by WriteZip keyed by name
func ReadZip(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	sections := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("gpu: reading %s: %w", f.Name, err)
		}
		sections[f.Name] = content
	}
	return sections, nil
}

// DecodeNodes decodes a nodes section
func DecodeNodes(data []byte) ([]Node, error) {
	size := binary.Size(Node{})
	if len(data)%size != 0 {
		return nil, fmt.Errorf("gpu: nodes section of %d bytes is not a multiple of %d", len(data), size)
	}
	nodes := make([]Node, len(data)/size)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// DecodeInput decodes an input section
func DecodeInput(data []byte) (Input, error) {
	var input Input
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &input)
	return input, err
}

// ImageBytes encodes an image as the kernel's RGBA half-float storage image
func ImageBytes(img *renderer.HalfImage) []byte {
	data := make([]byte, 2*len(img.Pix))
	for i, h := range img.Pix {
		binary.LittleEndian.PutUint16(data[2*i:], h.Bits())
	}
	return data
}

// DecodeImage is the inverse of ImageBytes
func DecodeImage(data []byte, width, height int) (*renderer.HalfImage, error) {
	if len(data) != 8*width*height {
		return nil, fmt.Errorf("gpu: image of %d bytes does not match %dx%d", len(data), width, height)
	}
	img := renderer.NewHalfImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = float16.Frombits(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return img, nil
}
