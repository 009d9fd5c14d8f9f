// Package compress packs a single CSV document into a zip or tar archive and
// extracts it again.
package compress

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind is an archive format.
type Kind string

const (
	Zip Kind = "zip"
	Tar Kind = "tar"
)

// ErrNoCSV is returned when an archive holds no CSV file.
var ErrNoCSV = errors.New("CSV file not found in the archive")

// ParseKind maps a query value onto a known archive kind. Unknown values fall back to zip.
func ParseKind(s string) Kind {
	if Kind(strings.ToLower(strings.TrimSpace(s))) == Tar {
		return Tar
	}
	return Zip
}

func (k Kind) ContentType() string {
	if k == Tar {
		return "application/x-tar"
	}
	return "application/zip"
}

// NewWriter returns a writer whose content becomes fileName inside an archive of kind k.
// The archive is complete only after Close.
func NewWriter(k Kind, w io.Writer, fileName string) (io.WriteCloser, error) {
	switch k {
	case Zip:
		return NewZipWriter(w, fileName)
	case Tar:
		return NewTarWriter(w, fileName), nil
	default:
		return nil, fmt.Errorf("unsupported archive type %q", k)
	}
}

// NewReader extracts the first CSV file of an archive of kind k.
func NewReader(k Kind, r io.ReadCloser) (io.ReadCloser, error) {
	switch k {
	case Zip:
		return NewZipReader(r)
	case Tar:
		return NewTarReader(r)
	default:
		return nil, fmt.Errorf("unsupported archive type %q", k)
	}
}

func isCSV(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}
