package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/corona10/goimagehash"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 1024
	DefaultOutputDir = "output"
	jpegQuality      = 95
)

var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png"}

type Config struct {
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxWidth          int      `mapstructure:"max_width"`
	MaxHeight         int      `mapstructure:"max_height"`
	OutputDir         string   `mapstructure:"output_dir"`
	MaxBytes          int64    `mapstructure:"max_bytes"`
}

func (c *Config) setDefaults() {
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = DefaultAllowedExtensions
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = DefaultMaxWidth
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = DefaultMaxHeight
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
}

type preprocessor struct {
	logger *logrus.Logger
	cfg    Config
}

// NewPreprocessor validates the extension, shrinks the image to fit the
// configured box and writes the normalized copy to the output directory.
func NewPreprocessor(logger *logrus.Logger, cfg Config) detectors.Ingestor {
	cfg.setDefaults()
	return &preprocessor{logger: logger, cfg: cfg}
}

func (p *preprocessor) Preprocess(ctx context.Context, imagePath string) (*moderation.DetectorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(imagePath))
	if !p.allowed(ext) {
		return failure(fmt.Errorf("%w: %s", moderation.ErrUnsupportedFormat, ext)), nil
	}

	data, err := os.ReadFile(filepath.Clean(imagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return failure(fmt.Errorf("%w at %s", moderation.ErrImageNotFound, imagePath)), nil
		}
		return failure(err), nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return failure(fmt.Errorf("cannot decode image: %w", err)), nil
	}

	bounds := img.Bounds()
	original := moderation.Size{Width: bounds.Dx(), Height: bounds.Dy()}
	resized := thumbnail(img, p.cfg.MaxWidth, p.cfg.MaxHeight)
	newBounds := resized.Bounds()

	fingerprint := ""
	if hash, err := goimagehash.DifferenceHash(resized); err == nil {
		fingerprint = hash.ToString()
	}

	outputPath, err := p.write(imagePath, fingerprint, format, resized)
	if err != nil {
		return failure(err), nil
	}

	p.logger.WithFields(logrus.Fields{
		"image":         imagePath,
		"output":        outputPath,
		"original_size": original.String(),
		"new_size":      fmt.Sprintf("%dx%d", newBounds.Dx(), newBounds.Dy()),
	}).Debug("image preprocessed")

	return moderation.NewIngestionResult(&moderation.ProcessedImage{
		OutputPath:   outputPath,
		OriginalSize: original,
		NewSize:      moderation.Size{Width: newBounds.Dx(), Height: newBounds.Dy()},
		Format:       strings.ToUpper(format),
		Fingerprint:  fingerprint,
		Metadata:     ExtractMetadata(data),
	}), nil
}

func (p *preprocessor) allowed(ext string) bool {
	for _, e := range p.cfg.AllowedExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func (p *preprocessor) write(imagePath, fingerprint, format string, img image.Image) (string, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0750); err != nil {
		return "", fmt.Errorf("cannot create output directory: %w", err)
	}
	name := filepath.Base(imagePath)
	if format != "jpeg" && format != "png" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	}
	if fingerprint != "" {
		name = strings.ReplaceAll(fingerprint, ":", "_") + "_" + name
	}
	out := filepath.Join(p.cfg.OutputDir, name)

	f, err := os.OpenFile(filepath.Clean(out), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("cannot write processed image: %w", err)
	}
	if format == "jpeg" {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("cannot encode processed image: %w", err)
	}
	return out, nil
}

// thumbnail shrinks img to fit in maxW x maxH keeping its aspect ratio. It
// never enlarges.
func thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * ratio))
	nh := int(math.Round(float64(h) * ratio))
	return max(nw, 1), max(nh, 1)
}

func failure(err error) *moderation.DetectorResult {
	return moderation.NewErrorResult(moderation.KindIngestion, err.Error())
}
