package material

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp" // BMP decoder registration

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/logger"
)

// Texture is a 2D RGBA image and, once uploaded, its GPU texture.
type Texture struct {
	name  string
	image *image.RGBA
	id    uint32

	translucent bool
}

// NewTexture wraps img, converting it to RGBA when needed.
func NewTexture(name string, img image.Image) *Texture {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	t := &Texture{name: name, image: rgba}
	t.scanAlpha()
	return t
}

// DecodeTexture decodes TGA, PNG, JPEG or BMP data. The name's extension
// selects TGA, which has no magic number; other formats are sniffed.
func DecodeTexture(name string, data []byte) (*Texture, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return NewTexture(name, img), nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return NewTexture(name, img), nil
}

// LoadTexture reads and decodes an image file.
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	return DecodeTexture(filepath.Base(path), data)
}

// Name returns the texture name.
func (t *Texture) Name() string { return t.name }

// Image returns the pixels. It is nil after ReleaseImage.
func (t *Texture) Image() *image.RGBA { return t.image }

// ID returns the GPU texture, or 0 before upload.
func (t *Texture) ID() uint32 { return t.id }

// Size returns the width and height in pixels.
func (t *Texture) Size() (int, int) {
	if t.image == nil {
		return 0, 0
	}
	b := t.image.Bounds()
	return b.Dx(), b.Dy()
}

// IsTranslucent reports whether any pixel is not fully opaque.
func (t *Texture) IsTranslucent() bool { return t.translucent }

func (t *Texture) scanAlpha() {
	t.translucent = false
	for i := 3; i < len(t.image.Pix); i += 4 {
		if t.image.Pix[i] != 0xff {
			t.translucent = true
			return
		}
	}
}

// ApplyColorKey makes every pixel within tolerance of key fully
// transparent black, so filtering does not bleed the key color.
func (t *Texture) ApplyColorKey(key color.RGBA, tolerance uint8) {
	near := func(a, b uint8) bool {
		if a > b {
			return a-b <= tolerance
		}
		return b-a <= tolerance
	}
	pix := t.image.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if near(pix[i], key.R) && near(pix[i+1], key.G) && near(pix[i+2], key.B) {
			pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0
		}
	}
	t.scanAlpha()
}

// Upload creates the GPU texture. It does nothing when already uploaded.
func (t *Texture) Upload(ctx *gpu.Context) error {
	if t.id != 0 || t.image == nil {
		return nil
	}
	w, h := t.Size()
	id, err := ctx.UploadTexture(w, h, t.image.Pix)
	if err != nil {
		logger.Warn("texture upload failed", zap.String("texture", t.name), zap.Error(err))
		return err
	}
	t.id = id
	return nil
}

// ReleaseImage drops the pixels once the GPU holds them.
func (t *Texture) ReleaseImage() {
	if t.id != 0 {
		t.image = nil
	}
}

// Delete releases the GPU texture.
func (t *Texture) Delete(ctx *gpu.Context) {
	ctx.DeleteTexture(t.id)
	t.id = 0
}
