package bitstream

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// ArchiveMember is the image name the sample generator stores in its archives.
const ArchiveMember = "base_project.jic"

// Open reads an image from fsys. The container is chosen by file extension:
// ".zip" archives are searched for ArchiveMember (or else the first ".jic"
// member), ".gz" files are decompressed, anything else is read as is.
func Open(fsys afero.Fs, name string, opts ...Option) (*Image, error) {
	raw, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("bitstream: read %s: %w", name, err)
	}

	var data []byte
	switch strings.ToLower(path.Ext(name)) {
	case ".zip":
		data, err = readArchive(raw)
	case ".gz":
		data, err = readGzip(raw)
	default:
		data = raw
	}
	if err != nil {
		return nil, fmt.Errorf("bitstream: unpack %s: %w", name, err)
	}

	img, err := Load(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

func readArchive(raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	var member *zip.File
	for _, f := range zr.File {
		if path.Base(f.Name) == ArchiveMember {
			member = f
			break
		}
		if member == nil && strings.EqualFold(path.Ext(f.Name), ".jic") {
			member = f
		}
	}
	if member == nil {
		return nil, fmt.Errorf("no .jic member in archive")
	}

	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func readGzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
