// package artwork fetches album art and derives a small color palette for
// the display sink. Everything here is best effort: any failure falls back
// to the default palette and is never fatal.
package artwork

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
)

const (
	fetchTimeout  = 5 * time.Second
	downscaleEdge = 200
)

// Palette holds hex colors derived from album art, ordered by dominance.
type Palette struct {
	Primary   string
	Secondary string
	Dim       string
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:   "#FFFFFF",
		Secondary: "#AAAAAA",
		Dim:       "#555555",
	}
}

// Fetch loads album art from an http(s) or file URL, as MPRIS players
// report both.
func Fetch(artURL string) (image.Image, error) {
	if artURL == "" {
		return nil, errors.New("empty artwork url")
	}

	parsed, err := url.Parse(artURL)
	if err != nil {
		return nil, fmt.Errorf("invalid artwork url %q: %w", artURL, err)
	}

	switch parsed.Scheme {
	case "http", "https":
		return fetchHTTP(artURL)
	case "file":
		return fetchFile(parsed.Path)
	default:
		return nil, fmt.Errorf("unsupported artwork scheme %q", parsed.Scheme)
	}
}

// ExtractPalette reduces the image and clusters its dominant colors.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	small := resize.Thumbnail(downscaleEdge, downscaleEdge, img, resize.Lanczos3)

	colors, err := prominentcolor.Kmeans(small)
	if err != nil || len(colors) == 0 {
		return DefaultPalette()
	}

	palette := DefaultPalette()
	palette.Primary = hex(colors[0])
	if len(colors) > 1 {
		palette.Secondary = hex(colors[1])
	}
	if len(colors) > 2 {
		palette.Dim = hex(colors[2])
	}

	return palette
}

func fetchHTTP(artURL string) (image.Image, error) {
	client := &http.Client{Timeout: fetchTimeout}

	resp, err := client.Get(artURL)
	if err != nil {
		return nil, fmt.Errorf("artwork fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	return img, nil
}

func fetchFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	return img, nil
}

func hex(c prominentcolor.ColorItem) string {
	return "#" + strings.ToUpper(c.AsString())
}
