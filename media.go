package underserved

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxMediaDimension = 4000
	jpegQuality       = 80
)

// Transform is the subset of image CDN parameters the media server honors.
// A zero Width or Height means "derive from the aspect ratio".
type Transform struct {
	Width  int
	Height int
	Crop   bool
}

// IsZero reports whether t leaves the image untouched.
func (t Transform) IsZero() bool {
	return t.Width == 0 && t.Height == 0
}

// ParseTransform reads w, h and fit from query values. Unknown parameters
// such as auto=format are ignored.
func ParseTransform(q url.Values) (Transform, error) {
	var t Transform
	var err error
	if t.Width, err = dimension(q.Get("w")); err != nil {
		return Transform{}, fmt.Errorf("w: %w", err)
	}
	if t.Height, err = dimension(q.Get("h")); err != nil {
		return Transform{}, fmt.Errorf("h: %w", err)
	}
	t.Crop = q.Get("fit") == "crop"
	return t, nil
}

func dimension(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	if n > maxMediaDimension {
		n = maxMediaDimension
	}
	return n, nil
}

// Apply resizes src. Without Crop the result fits inside the requested box;
// with Crop and both dimensions it covers the box and is center-cropped.
// Images are never scaled up.
func (t Transform) Apply(src image.Image) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if t.IsZero() || sw == 0 || sh == 0 {
		return src
	}

	if t.Crop && t.Width > 0 && t.Height > 0 {
		w, h := t.Width, t.Height
		// Largest source window with the target aspect ratio.
		cw, ch := sw, max(sw*h/w, 1)
		if ch > sh {
			cw, ch = max(sh*w/h, 1), sh
		}
		if w > cw {
			w, h = cw, ch
		}
		x0 := b.Min.X + (sw-cw)/2
		y0 := b.Min.Y + (sh-ch)/2
		return scale(src, image.Rect(x0, y0, x0+cw, y0+ch), w, h)
	}

	w, h := sw, sh
	if t.Width > 0 && w > t.Width {
		w, h = t.Width, sh*t.Width/sw
	}
	if t.Height > 0 && h > t.Height {
		w, h = w*t.Height/h, t.Height
	}
	if w == sw && h == sh {
		return src
	}
	return scale(src, b, max(w, 1), max(h, 1))
}

func scale(src image.Image, from image.Rectangle, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, from, draw.Over, nil)
	return dst
}

// MediaServer serves mirrored images from a directory, resizing on request.
type MediaServer struct {
	fsys fs.FS
}

// NewMediaServer serves files under dir.
func NewMediaServer(dir string) *MediaServer {
	return &MediaServer{fsys: os.DirFS(dir)}
}

// Handle serves /media/<name>. Requests without transform parameters get the
// file as stored.
func (m *MediaServer) Handle(c echo.Context) error {
	name := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	if name == "" || !fs.ValidPath(name) {
		return echo.ErrNotFound
	}
	t, err := ParseTransform(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid transform: "+err.Error())
	}

	f, err := m.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return echo.ErrNotFound
	}

	if t.IsZero() {
		rs, ok := f.(io.ReadSeeker)
		if !ok {
			return fmt.Errorf("media: %s is not seekable", name)
		}
		http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), rs)
		return nil
	}

	data, contentType, err := resizeImage(f, t)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "cannot transform image")
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	http.ServeContent(c.Response(), c.Request(), "", info.ModTime(), bytes.NewReader(data))
	return nil
}

// resizeImage decodes src, applies t and re-encodes it. PNG and GIF sources
// come out as PNG, everything else as JPEG.
func resizeImage(src io.Reader, t Transform) ([]byte, string, error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	img = t.Apply(img)

	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}
