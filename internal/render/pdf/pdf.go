package pdf

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/gompage/internal/layout"
	"go.uber.org/zap"
)

// pxToPt converts CSS px to PDF points
const pxToPt = 72.0 / 96.0

// ImageSource provides image data fpdf can embed
type ImageSource interface {
	RasterImage(src string, width, height int) ([]byte, string, error)
}

// Renderer handles rendering to PDF. Boxes are laid out in CSS px; every
// page is drawn in a px coordinate system scaled to points.
type Renderer struct {
	log    *zap.Logger
	images ImageSource

	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes controls drawing of debug outlines
	DebugDrawBoxes bool

	// listStack tracks nested list contexts while rendering
	listStack []listContext
	// registered maps image keys to fpdf image names
	registered map[string]string
	translate  func(string) string
}

// listContext represents an active list (ul/ol) while rendering
type listContext struct {
	kind    string // "ul" or "ol"
	style   string // list-style-type
	counter int    // for ordered lists
}

// RenderOptions contains document metadata
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// NewRenderer creates a new PDF renderer. images may be nil, in which case
// images are left out.
func NewRenderer(images ImageSource, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		log:               log.Named("pdf"),
		images:            images,
		RenderBackgrounds: true,
		RenderBorders:     true,
	}
}

// Render writes one PDF page per page box. Each page is as large as its box.
func (r *Renderer) Render(pages []*layout.BlockBox, w io.Writer, options RenderOptions) error {
	r.listStack = nil
	r.registered = make(map[string]string)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        "A4",
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 12)
	r.translate = pdf.UnicodeTranslatorFromDescriptor("")

	r.log.Debug("Rendering pages", zap.Int("pages", len(pages)))
	for i, page := range pages {
		orient := "P"
		if page.Width > page.Height {
			orient = "L"
		}
		pdf.AddPageFormat(orient, fpdf.SizeType{Wd: page.Width * pxToPt, Ht: page.Height * pxToPt})

		pdf.TransformBegin()
		pdf.TransformScale(pxToPt*100, pxToPt*100, 0, 0)
		// pages hide their overflow
		pdf.ClipRect(page.X, page.Y, page.Width, page.Height, false)
		r.renderBox(pdf, page)
		pdf.ClipEnd()
		pdf.TransformEnd()

		if err := pdf.Error(); err != nil {
			return fmt.Errorf("rendering page %d: %w", i+1, err)
		}
	}
	return pdf.Output(w)
}

// renderBox renders a box to the PDF
func (r *Renderer) renderBox(pdf *fpdf.Fpdf, box layout.Box) {
	switch b := box.(type) {
	case *layout.BlockBox:
		r.renderBlockBox(pdf, b)
	case *layout.InlineBox:
		r.renderText(pdf, b)
	case *layout.ImageBox:
		r.renderImage(pdf, b)
	default:
		r.log.Debug("Unknown box type", zap.String("type", fmt.Sprintf("%T", box)))
	}
}

// renderBlockBox renders a block box and its children
func (r *Renderer) renderBlockBox(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	r.renderBackground(pdf, box)
	r.renderBorders(pdf, box)

	enteringList := false
	if box.Node != nil {
		tag := box.Node.Tag()
		if tag == "ul" || tag == "ol" {
			enteringList = true
			lc := listContext{kind: tag, style: strings.ToLower(box.Style.Get("list-style-type"))}
			if lc.style == "" {
				if tag == "ul" {
					lc.style = "disc"
				} else {
					lc.style = "decimal"
				}
			}
			r.listStack = append(r.listStack, lc)
		}
	}

	for _, child := range box.Children {
		if len(r.listStack) > 0 {
			if cb, ok := child.(*layout.BlockBox); ok && cb.Node != nil && cb.Node.Tag() == "li" {
				top := &r.listStack[len(r.listStack)-1]
				if top.kind == "ol" {
					top.counter++
				}
				r.renderListMarker(pdf, cb, *top)
			}
		}
		r.renderBox(pdf, child)
	}

	if enteringList {
		r.listStack = r.listStack[:len(r.listStack)-1]
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(box.X, box.Y, box.Width, box.Height, "D")
	}
}

// renderBackground paints the background color of a block box
func (r *Renderer) renderBackground(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	if !r.RenderBackgrounds {
		return
	}
	color, ok := parseColor(box.Style.Get("background-color"))
	if !ok {
		return
	}
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.Rect(box.X, box.Y, box.Width, box.Height, "F")
}

// renderBorders paints each visible border side as a filled band
func (r *Renderer) renderBorders(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	if !r.RenderBorders {
		return
	}
	sides := []struct {
		name       string
		x, y, w, h float64
	}{
		{"top", box.X, box.Y, box.Width, box.BorderTop},
		{"right", box.X + box.Width - box.BorderRight, box.Y, box.BorderRight, box.Height},
		{"bottom", box.X, box.Y + box.Height - box.BorderBottom, box.Width, box.BorderBottom},
		{"left", box.X, box.Y, box.BorderLeft, box.Height},
	}
	for _, s := range sides {
		if s.w <= 0 || s.h <= 0 {
			continue
		}
		color, ok := parseColor(box.Style.Get("border-" + s.name + "-color"))
		if !ok {
			color, _ = parseColor(box.Style.Get("color"))
		}
		pdf.SetFillColor(color[0], color[1], color[2])
		pdf.Rect(s.x, s.y, s.w, s.h, "F")
	}
}

// renderText draws a laid out piece of text at its baseline
func (r *Renderer) renderText(pdf *fpdf.Fpdf, box *layout.InlineBox) {
	if box.Text == "" || strings.EqualFold(box.Style.Get("visibility"), "hidden") {
		return
	}
	color, _ := parseColor(box.Style.Get("color"))
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.SetFont(box.Font.Family, box.Font.Style, box.Font.Size)
	pdf.Text(box.X, box.Baseline, r.translate(box.Text))

	if strings.Contains(strings.ToLower(box.Style.Get("text-decoration")), "underline") {
		pdf.SetFillColor(color[0], color[1], color[2])
		pdf.Rect(box.X, box.Baseline+box.Font.Size*0.1, box.Width, math.Max(box.Font.Size/16, 0.5), "F")
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(0, 0, 200)
		pdf.SetLineWidth(0.5)
		pdf.Rect(box.X, box.Y, box.Width, box.Height, "D")
	}
}

// renderImage embeds an image into its content box
func (r *Renderer) renderImage(pdf *fpdf.Fpdf, box *layout.ImageBox) {
	if r.images == nil || box.Src == "" {
		return
	}
	p := box.Style.Padding(box.Width)
	b := box.Style.Border()
	x := box.X + p.Left + b.Left
	y := box.Y + p.Top + b.Top
	w := box.Width - p.Horizontal() - b.Horizontal()
	h := box.Height - p.Vertical() - b.Vertical()
	if w <= 0 || h <= 0 {
		return
	}

	pw, ph := int(math.Ceil(w)), int(math.Ceil(h))
	key := box.Src + "@" + strconv.Itoa(pw) + "x" + strconv.Itoa(ph)
	name, ok := r.registered[key]
	if !ok {
		data, kind, err := r.images.RasterImage(box.Src, pw, ph)
		if err != nil {
			r.log.Warn("Skipping image", zap.String("src", truncate(box.Src, 64)), zap.Error(err))
			return
		}
		name = "img" + strconv.Itoa(len(r.registered))
		opts := fpdf.ImageOptions{ImageType: kind}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if err := pdf.Error(); err != nil {
			r.log.Warn("Skipping image", zap.String("src", truncate(box.Src, 64)), zap.Error(err))
			pdf.ClearError()
			return
		}
		r.registered[key] = name
	}
	pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
}

// parseColor parses a CSS color value. The boolean is false for transparent
// and unknown values.
func parseColor(value string) ([3]int, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(value, "#") {
		if r, g, b, ok := parseHexColor(value); ok {
			return [3]int{r, g, b}, true
		}
		return [3]int{}, false
	}
	if c, ok := namedColors[value]; ok {
		return c, true
	}

	var r, g, b int
	compact := strings.ReplaceAll(value, " ", "")
	if _, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}, true
	}
	var a float64
	if _, err := fmt.Sscanf(compact, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err == nil && a > 0 {
		return [3]int{r, g, b}, true
	}
	return [3]int{}, false
}

var namedColors = map[string][3]int{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"navy":   {0, 0, 128},
	"maroon": {128, 0, 0},
	"orange": {255, 165, 0},
	"yellow": {255, 255, 0},
	"purple": {128, 0, 128},
	"teal":   {0, 128, 128},
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

// renderListMarker draws the bullet/number for a list item based on current list context
func (r *Renderer) renderListMarker(pdf *fpdf.Fpdf, li *layout.BlockBox, ctx listContext) {
	fontSize := li.Style.FontSize()
	color, _ := parseColor(li.Style.Get("color"))
	if ib := firstInlineChild(li); ib != nil {
		fontSize = ib.Font.Size
		color, _ = parseColor(ib.Style.Get("color"))
	}

	cx := li.X - fontSize      // approx 1em to the left
	cy := li.Y + fontSize*0.75 // closer to visual middle of the text

	switch ctx.kind {
	case "ul":
		rbullet := math.Max(fontSize*0.18, 1.2)
		pdf.SetDrawColor(color[0], color[1], color[2])
		pdf.SetFillColor(color[0], color[1], color[2])
		switch ctx.style {
		case "none":
		case "circle":
			pdf.SetLineWidth(0.8)
			pdf.Circle(cx, cy, rbullet, "D")
		case "square":
			side := rbullet * 2
			pdf.Rect(cx-rbullet, cy-rbullet, side, side, "F")
		default:
			pdf.Circle(cx, cy, rbullet, "F")
		}
	case "ol":
		var marker string
		switch ctx.style {
		case "none":
			return
		case "lower-alpha":
			marker = toAlpha(ctx.counter, false) + "."
		case "upper-alpha":
			marker = toAlpha(ctx.counter, true) + "."
		default:
			marker = strconv.Itoa(ctx.counter) + "."
		}
		pdf.SetTextColor(color[0], color[1], color[2])
		pdf.SetFont("Helvetica", "", fontSize)
		startX := math.Max(0, li.X-pdf.GetStringWidth(marker)-fontSize*0.2)
		pdf.Text(startX, li.Y+fontSize, marker)
	}
}

// firstInlineChild returns the first InlineBox found within the list item
func firstInlineChild(b *layout.BlockBox) *layout.InlineBox {
	for _, ch := range b.Children {
		if ib, ok := ch.(*layout.InlineBox); ok {
			return ib
		}
		if bb, ok := ch.(*layout.BlockBox); ok {
			for _, gc := range bb.Children {
				if ib2, ok := gc.(*layout.InlineBox); ok {
					return ib2
				}
			}
		}
	}
	return nil
}

// toAlpha converts 1-based index to alphabetic sequence (a..z, aa..zz, ...)
func toAlpha(n int, upper bool) string {
	if n <= 0 {
		return ""
	}
	base := 'a'
	if upper {
		base = 'A'
	}
	var letters []rune
	for n > 0 {
		n--
		letters = append([]rune{base + rune(n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
