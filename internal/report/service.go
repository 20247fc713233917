package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"health-intake/internal/intake"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"
)

const fontName = "JP"

// Japanese-capable TrueType fonts probed when no explicit path is configured.
// TrueType collections (.ttc) are not supported by gopdf.
var defaultFontPaths = []string{
	"/usr/share/fonts/opentype/ipaexfont-gothic/ipaexg.ttf",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/usr/share/fonts/ipaexfont-gothic/ipaexg.ttf",
	"/usr/share/fonts/ipa-gothic/ipag.ttf",
	"/usr/share/fonts/truetype/takao-gothic/TakaoPGothic.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansJP-Regular.ttf",
}

const (
	pageWidth    = 595.28
	pageHeight   = 841.89
	margin       = 42.0
	contentWidth = pageWidth - 2*margin
)

type Renderer struct {
	fontPaths []string
	logger    *zap.Logger
	now       func() time.Time
}

// NewRenderer returns a renderer that loads fontPath, or probes the usual
// system locations when fontPath is empty.
func NewRenderer(fontPath string, logger *zap.Logger) *Renderer {
	paths := defaultFontPaths
	if fontPath != "" {
		paths = []string{fontPath}
	}
	return &Renderer{fontPaths: paths, logger: logger, now: time.Now}
}

// FileName names a report rendered now.
func (s *Renderer) FileName(r intake.PatientRecord) string {
	return FileName(r, s.now())
}

// Render draws the record as an A4 PDF.
func (s *Renderer) Render(ctx context.Context, r intake.PatientRecord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := s.loadFont(pdf); err != nil {
		return nil, err
	}

	w := &writer{pdf: pdf}
	w.newPage()
	if err := w.document(Build(r, s.now())); err != nil {
		return nil, fmt.Errorf("failed to draw PDF: %w", err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	s.logger.Debug("Report rendered", zap.Int("bytes", buf.Len()), zap.Int("body_parts", len(r.BodyParts)))
	return buf.Bytes(), nil
}

func (s *Renderer) loadFont(pdf *gopdf.GoPdf) error {
	var fontErr error
	for _, path := range s.fontPaths {
		err := pdf.AddTTFFont(fontName, path)
		if err == nil {
			s.logger.Debug("Loaded report font", zap.String("path", path))
			return nil
		}
		fontErr = err
	}
	s.logger.Error("Error loading report font from all paths", zap.Strings("paths", s.fontPaths), zap.Error(fontErr))
	return fmt.Errorf("failed to load a Japanese TTF font for the report (set REPORT_FONT_PATH): %w", fontErr)
}

type writer struct {
	pdf *gopdf.GoPdf
}

func (w *writer) newPage() {
	w.pdf.AddPage()
	w.pdf.SetX(margin)
	w.pdf.SetY(margin)
}

// ensure starts a new page when h more points do not fit.
func (w *writer) ensure(h float64) {
	if w.pdf.GetY()+h > pageHeight-margin {
		w.newPage()
	}
}

func (w *writer) line(l Line, width float64) error {
	if l.Text == "" {
		return nil
	}
	if err := w.pdf.SetFont(fontName, "", l.Size); err != nil {
		return err
	}
	w.pdf.SetTextColor(l.Color.R, l.Color.G, l.Color.B)
	parts, err := w.pdf.SplitText(l.Text, width)
	if err != nil {
		return err
	}
	x := w.pdf.GetX()
	for _, p := range parts {
		w.ensure(l.Size + 4)
		w.pdf.SetX(x)
		if err := w.pdf.Cell(nil, p); err != nil {
			return err
		}
		w.pdf.Br(l.Size + 4)
	}
	w.pdf.SetX(margin)
	return nil
}

func (w *writer) document(doc Document) error {
	if err := w.line(Line{Text: doc.Title, Color: black, Size: 20}, contentWidth); err != nil {
		return err
	}
	if err := w.line(Line{Text: doc.Patient, Color: black, Size: 16}, contentWidth); err != nil {
		return err
	}
	if err := w.line(small(doc.Subtitle+"    "+doc.Date), contentWidth); err != nil {
		return err
	}
	w.pdf.SetStrokeColor(black.R, black.G, black.B)
	w.pdf.SetLineWidth(1.5)
	w.pdf.Line(margin, w.pdf.GetY()+2, pageWidth-margin, w.pdf.GetY()+2)
	w.pdf.Br(14)

	for _, sec := range doc.Sections {
		if err := w.section(sec); err != nil {
			return err
		}
	}

	w.pdf.Br(10)
	return w.line(small(doc.Footer), contentWidth)
}

func (w *writer) section(sec Section) error {
	w.ensure(40)
	y := w.pdf.GetY()
	w.pdf.SetFillColor(241, 245, 249)
	if err := w.pdf.Rectangle(margin, y, pageWidth-margin, y+20, "F", 0, 0); err != nil {
		return err
	}
	w.pdf.SetY(y + 4)
	w.pdf.SetX(margin + 6)
	if err := w.line(Line{Text: sec.Heading, Color: black, Size: 12}, contentWidth-12); err != nil {
		return err
	}
	w.pdf.Br(4)

	for _, l := range sec.Lines {
		w.pdf.SetX(margin + 6)
		if err := w.line(l, contentWidth-12); err != nil {
			return err
		}
	}

	if sec.Band != nil && len(sec.Boxed) > 0 {
		h := 0.0
		for _, l := range sec.Boxed {
			h += (l.Size + 4) * 2
		}
		h += 8
		w.ensure(h)
		y := w.pdf.GetY() + 2
		w.pdf.SetFillColor(sec.Band.Fill.R, sec.Band.Fill.G, sec.Band.Fill.B)
		w.pdf.SetStrokeColor(sec.Band.Border.R, sec.Band.Border.G, sec.Band.Border.B)
		w.pdf.SetLineWidth(1)
		if err := w.pdf.Rectangle(margin, y, pageWidth-margin, y+h, "FD", 0, 0); err != nil {
			return err
		}
		w.pdf.SetY(y + 6)
		for _, l := range sec.Boxed {
			w.pdf.SetX(margin + 8)
			if err := w.line(l, contentWidth-16); err != nil {
				return err
			}
		}
		w.pdf.SetY(y + h)
	}

	w.pdf.Br(12)
	return nil
}
