package feed

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	_ "image/gif"
)

const (
	maxUploadMemory = 8 << 20
	maxImageWidth   = 1200
	jpegQuality     = 85
)

var (
	ErrUnsupportedImageType = errors.New("unsupported image type, allowed: jpg, jpeg, png, gif, webp")
	ErrImageTooLarge        = errors.New("image too large, max 5MB")
	ErrInvalidImage         = errors.New("file is not a valid image")
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Uploader stores post images on local disk and serves them back under
// urlPrefix. Wide jpeg/png images are downscaled to maxImageWidth; gif and
// webp are validated and stored untouched.
type Uploader struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

func NewUploader(dir, urlPrefix string, maxBytes int64) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Uploader{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/"), maxBytes: maxBytes}, nil
}

func (u *Uploader) SaveImage(file io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExts[ext] {
		return "", ErrUnsupportedImageType
	}

	// One extra byte past the limit tells "too large" apart from "exactly
	// at the limit".
	data, err := io.ReadAll(io.LimitReader(file, u.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > u.maxBytes {
		return "", ErrImageTooLarge
	}

	switch ext {
	case ".gif", ".webp":
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return "", ErrInvalidImage
		}
	default:
		data, ext, err = normalizeImage(data)
		if err != nil {
			return "", err
		}
	}

	name := time.Now().UTC().Format("20060102_150405") + "_" + uuid.NewString()[:8] + ext
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", err
	}

	return u.urlPrefix + "/" + name, nil
}

// DeleteImage removes the stored file behind a previously returned URL.
// Missing files are not an error: the post row is already gone.
func (u *Uploader) DeleteImage(url string) {
	name := path.Base(url)
	if name == "." || name == "/" {
		return
	}
	if err := os.Remove(filepath.Join(u.dir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("feed-service: delete image %s: %v", name, err)
	}
}

// normalizeImage decodes a jpeg/png, downscales anything wider than
// maxImageWidth and re-encodes. Returns the bytes and the extension the
// result was encoded with.
func normalizeImage(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrInvalidImage
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageWidth {
		h := bounds.Dy() * maxImageWidth / bounds.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".png", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".jpg", nil
	}
}
