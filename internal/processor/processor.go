// Package processor implements the image transformation engine: decode once,
// resize per target width preserving aspect ratio, encode via the format
// strategy and write the result under a content-addressed path.
package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"

	// Registers the webp decoder; jpeg, png, gif, tiff and bmp come in
	// through the imaging import.
	_ "golang.org/x/image/webp"

	"image-resizer/internal/format"
	"image-resizer/internal/model"
)

var (
	// ErrSourceNotFound indicates a path source that does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrDecode indicates the source bytes could not be decoded as an image.
	ErrDecode = errors.New("decode error")

	// ErrStorage indicates a failure while writing an output file.
	ErrStorage = errors.New("storage error")
)

const (
	defaultBaseName  = "image"
	defaultExtension = ".jpg"
)

// fileStorage defines the interface for persisting encoded outputs.
// Implementations exist for the local filesystem and for S3/MinIO.
type fileStorage interface {
	Save(ctx context.Context, relPath string, src io.Reader) (string, error)
}

// Processor resizes a source image into a set of target widths.
type Processor struct {
	fileStorage fileStorage
	registry    *format.Registry
}

// New creates a Processor writing through the given storage backend.
func New(fs fileStorage, reg *format.Registry) *Processor {
	return &Processor{fileStorage: fs, registry: reg}
}

// ProcessFile resizes an image read from a local path. The output base name
// and extension derive from the path's basename.
func (p *Processor) ProcessFile(ctx context.Context, srcPath string, widths []int) ([]model.ProcessedImage, error) {
	if strings.TrimSpace(srcPath) == "" {
		return nil, fmt.Errorf("%w: source path is empty", model.ErrInvalidArgument)
	}
	if err := validateWidths(widths); err != nil {
		return nil, err
	}

	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, srcPath)
		}
		return nil, fmt.Errorf("stat source %s: %w", srcPath, err)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", srcPath, err)
	}

	return p.process(ctx, data, filepath.Base(srcPath), widths)
}

// Process resizes an image held in memory. originalFilename is optional and
// only used to derive the output base name and extension.
func (p *Processor) Process(ctx context.Context, data []byte, originalFilename string, widths []int) ([]model.ProcessedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: source data is empty", model.ErrInvalidArgument)
	}
	if err := validateWidths(widths); err != nil {
		return nil, err
	}

	return p.process(ctx, data, originalFilename, widths)
}

func (p *Processor) process(ctx context.Context, data []byte, originalFilename string, widths []int) ([]model.ProcessedImage, error) {
	// Decode once: dimensions and detected format drive everything below.
	src, detected, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	baseName, ext := splitFilename(originalFilename)
	policy := p.registry.PolicyFor(detected)
	outExt := policy.Extension(ext)

	zlog.Logger.Debug().
		Str("format", detected).
		Int("width", srcWidth).
		Int("height", srcHeight).
		Str("base_name", baseName).
		Msg("decoded source image")

	results := make([]model.ProcessedImage, 0, len(widths))

	for _, width := range widths {
		height := int(math.Round(float64(width) * float64(srcHeight) / float64(srcWidth)))

		resized := imaging.Resize(src, width, height, imaging.Lanczos)

		var buf bytes.Buffer
		if err := policy.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("encode %dpx output as %s: %w", width, policy.Name, err)
		}

		// The hash covers the encoded output, so identical visual output
		// at a given width always lands on the same filename.
		sum := md5.Sum(buf.Bytes())
		hash := hex.EncodeToString(sum[:])

		// Forward slashes regardless of host conventions.
		relPath := path.Join(baseName, strconv.Itoa(width), hash+outExt)

		if _, err := p.fileStorage.Save(ctx, relPath, &buf); err != nil {
			return nil, fmt.Errorf("%w: save %s: %v", ErrStorage, relPath, err)
		}

		results = append(results, model.ProcessedImage{
			Resolution: strconv.Itoa(width),
			Path:       relPath,
		})
	}

	return results, nil
}

func validateWidths(widths []int) error {
	if len(widths) == 0 {
		return fmt.Errorf("%w: target widths list is empty", model.ErrInvalidArgument)
	}
	for _, w := range widths {
		if w <= 0 {
			return fmt.Errorf("%w: target width %d is not positive", model.ErrInvalidArgument, w)
		}
	}

	return nil
}

// splitFilename derives the output base name and extension from the original
// filename, defaulting to "image" / ".jpg" when no usable name exists.
func splitFilename(name string) (base, ext string) {
	name = filepath.Base(strings.TrimSpace(name))

	ext = filepath.Ext(name)
	base = strings.TrimSuffix(name, ext)

	if base == "" || base == "." {
		base = defaultBaseName
	}
	if ext == "" {
		ext = defaultExtension
	}

	return base, ext
}
