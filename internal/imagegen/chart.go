package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/stats"
)

// Width and Height are the Open Graph image dimensions.
const (
	Width  = 1200
	Height = 630
)

var (
	fontTitle   font.Face
	fontRegular font.Face
	fontSmall   font.Face
	fontOnce    sync.Once
	fontErr     error
)

func newFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func loadFonts() error {
	fontOnce.Do(func() {
		if fontTitle, fontErr = newFace(gobold.TTF, 34); fontErr != nil {
			fontErr = fmt.Errorf("title face: %w", fontErr)
			return
		}
		if fontRegular, fontErr = newFace(goregular.TTF, 20); fontErr != nil {
			fontErr = fmt.Errorf("regular face: %w", fontErr)
			return
		}
		if fontSmall, fontErr = newFace(goregular.TTF, 15); fontErr != nil {
			fontErr = fmt.Errorf("small face: %w", fontErr)
		}
	})
	return fontErr
}

var (
	background = color.RGBA{255, 255, 255, 255}
	ink        = color.RGBA{40, 40, 48, 255}
	muted      = color.RGBA{120, 120, 130, 255}
	white      = color.RGBA{255, 255, 255, 255}
)

const (
	marginLeft   = 100
	marginRight  = 50
	marginTop    = 140
	marginBottom = 40
)

// RenderSeasonal draws the seasonal stacked bars as a PNG. An empty window
// renders the season prompt instead of bars.
func RenderSeasonal(w stats.SeasonalWindow, title string, p figures.Palette) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	drawText(img, title, marginLeft, 60, ink, fontTitle)

	if w.Empty() || len(w.Years) == 0 {
		drawCentered(img, figures.SeasonPrompt, Height/2-20, ink, fontRegular)
		drawCentered(img, figures.NoDataText, Height/2+20, muted, fontRegular)
		return encode(img)
	}

	// Legend.
	x := marginLeft
	for _, s := range w.Series {
		fillRect(img, image.Rect(x, 88, x+18, 106), hexColor(p.SeasonColor(s.Season)))
		drawText(img, string(s.Season), x+26, 104, ink, fontSmall)
		x += 40 + measure(fontSmall, string(s.Season))
	}

	stacked := make([]int, len(w.Years))
	for _, s := range w.Series {
		for i, v := range s.Counts {
			stacked[i] += v
		}
	}
	maxTotal := 1
	for _, v := range stacked {
		maxTotal = max(maxTotal, v)
	}

	plotW := Width - marginLeft - marginRight
	plotH := Height - marginTop - marginBottom
	rowH := plotH / len(w.Years)
	barH := max(rowH*7/10, 2)

	for i, year := range w.Years {
		top := marginTop + i*rowH + (rowH-barH)/2
		label := strconv.Itoa(year)
		drawText(img, label, marginLeft-12-measure(fontSmall, label), top+barH/2+5, muted, fontSmall)

		left := marginLeft
		for _, s := range w.Series {
			v := s.Counts[i]
			if v <= 0 {
				continue
			}
			width := v * plotW / maxTotal
			fillRect(img, image.Rect(left, top, left+width, top+barH), hexColor(p.SeasonColor(s.Season)))
			text := strconv.Itoa(v)
			if tw := measure(fontSmall, text); tw+8 < width && barH >= 16 {
				drawText(img, text, left+(width-tw)/2, top+barH/2+5, white, fontSmall)
			}
			left += width
		}
	}
	return encode(img)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func measure(face font.Face, text string) int {
	return font.MeasureString(face, text).Round()
}

func drawCentered(img *image.RGBA, text string, y int, col color.Color, face font.Face) {
	drawText(img, text, (Width-measure(face, text))/2, y, col, face)
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// hexColor parses "#rrggbb". Anything else is drawn grey.
func hexColor(s string) color.RGBA {
	grey := color.RGBA{189, 195, 199, 255}
	if len(s) != 7 || s[0] != '#' {
		return grey
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}
