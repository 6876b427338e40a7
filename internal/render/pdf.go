package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/matheuss-dsr/dedicandos/internal/questions"
	"github.com/matheuss-dsr/dedicandos/internal/shared/metrics"
	"github.com/matheuss-dsr/dedicandos/internal/shared/telemetry"
)

// Layout constants. The estimate pass and the draw pass must use the same
// values (and the same text measurement) so a break decision made from the
// estimate is always honored by the draw.
const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	marginBottom = 20.0

	titleLineHt = 7.0
	headLineHt  = 6.0
	bodyLineHt  = 5.5

	imageWidth     = 120.0
	imageAllowance = 80.0
	imageGap       = 2.0

	blockGap    = 2.0
	questionGap = 8.0
)

type pdfDoc struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	fetcher  *ImageFetcher
	contentW float64
	breakY   float64

	// drawnOnPage guards the break rule: the first question of a page is
	// always drawn in place, even when its estimate does not fit.
	drawnOnPage bool
}

func (r *Renderer) renderPDF(ctx context.Context, job Job) ([]byte, error) {
	doc := newPDFDoc(r.Images, job.Title)
	doc.drawHeader(job)

	for _, q := range job.Questions {
		doc.placeQuestion(ctx, q)
	}

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}

func newPDFDoc(fetcher *ImageFetcher, title string) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	// Page breaks are decided by the estimate, never by the library.
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	return &pdfDoc{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		fetcher:  fetcher,
		contentW: pageW - marginLeft - marginRight,
		breakY:   pageH - marginBottom,
	}
}

func (d *pdfDoc) drawHeader(job Job) {
	d.pdf.SetFont("Helvetica", "B", 16)
	title := job.Title
	if title == "" {
		title = "Prova"
	}
	d.pdf.MultiCell(d.contentW, titleLineHt, d.tr(title), "", "C", false)
	d.pdf.Ln(2)

	if s := job.Student; s != nil {
		d.pdf.SetFont("Helvetica", "", 11)
		for _, field := range []struct{ label, value string }{
			{"Nome", s.Name},
			{"Turma", s.Class},
			{"Escola", s.School},
			{"Série", s.Grade},
		} {
			line := field.label + ": " + field.value
			if field.value == "" {
				line = field.label + ": ______________________________"
			}
			d.pdf.MultiCell(d.contentW, bodyLineHt, d.tr(line), "", "L", false)
		}
	}
	d.pdf.Ln(4)
}

// placeQuestion applies the break heuristic and draws one question.
func (d *pdfDoc) placeQuestion(ctx context.Context, q questions.Question) {
	estimate := d.estimateQuestion(q)
	remaining := d.breakY - d.pdf.GetY()
	if estimate > remaining && d.drawnOnPage {
		d.pdf.AddPage()
		d.drawnOnPage = false
	}
	d.drawQuestion(ctx, q)
	d.drawnOnPage = true
}

// estimateQuestion computes the vertical footprint of a question using the
// same fonts and line widths the draw pass uses.
func (d *pdfDoc) estimateQuestion(q questions.Question) float64 {
	height := 0.0

	d.pdf.SetFont("Helvetica", "B", 12)
	height += float64(len(d.pdf.SplitText(d.measurable(d.heading(q)), d.contentW))) * headLineHt

	d.pdf.SetFont("Helvetica", "", 11)
	height += float64(len(d.pdf.SplitText(d.measurable(q.EnunciationText), d.contentW))) * bodyLineHt

	height += float64(len(q.ImageRefs)) * (imageAllowance + imageGap)

	height += blockGap
	height += float64(len(d.pdf.SplitText(d.measurable(alternativesBlock(q)), d.contentW))) * bodyLineHt

	return height + questionGap
}

// measurable prepares text for SplitText, which decodes UTF-8 and indexes
// the core font's 256-entry width table per rune. The cp1252 translation is
// not valid UTF-8, so each translated byte is re-encoded as its own rune:
// every index stays below 256 and the measurement covers exactly the bytes
// MultiCell will draw.
func (d *pdfDoc) measurable(s string) string {
	translated := d.tr(s)
	runes := make([]rune, len(translated))
	for i := 0; i < len(translated); i++ {
		runes[i] = rune(translated[i])
	}
	return string(runes)
}

func (d *pdfDoc) drawQuestion(ctx context.Context, q questions.Question) {
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.MultiCell(d.contentW, headLineHt, d.tr(d.heading(q)), "", "L", false)

	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.MultiCell(d.contentW, bodyLineHt, d.tr(q.EnunciationText), "", "L", false)

	for _, ref := range q.ImageRefs {
		d.embedImage(ctx, q, ref)
	}

	d.pdf.Ln(blockGap)
	d.pdf.MultiCell(d.contentW, bodyLineHt, d.tr(alternativesBlock(q)), "", "L", false)
	d.pdf.Ln(questionGap)
}

// embedImage fetches and places one remote image. Failures are logged and
// skipped; they never abort the render.
func (d *pdfDoc) embedImage(ctx context.Context, q questions.Question, url string) {
	if d.fetcher == nil {
		return
	}
	data, kind, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.IncImageSkipped()
		telemetry.Warn("render.image_skipped", map[string]any{
			"year":  q.Year,
			"index": q.Index,
			"url":   url,
			"error": err.Error(),
		})
		return
	}

	opts := fpdf.ImageOptions{ImageType: kind}
	info := d.pdf.RegisterImageOptionsReader(url, opts, bytes.NewReader(data))
	if info == nil || d.pdf.Err() {
		// A bad image must not poison the document.
		d.pdf.ClearError()
		metrics.IncImageSkipped()
		telemetry.Warn("render.image_skipped", map[string]any{
			"year":  q.Year,
			"index": q.Index,
			"url":   url,
			"error": "unreadable image data",
		})
		return
	}

	w := imageWidth
	if w > d.contentW {
		w = d.contentW
	}
	ratio := info.Height() / info.Width()
	h := w * ratio
	if h > imageAllowance {
		h = imageAllowance
		w = h / ratio
	}

	d.pdf.Ln(imageGap / 2)
	d.pdf.ImageOptions(url, marginLeft, 0, w, h, true, opts, 0, "")
	d.pdf.Ln(imageGap / 2)
}

func (d *pdfDoc) heading(q questions.Question) string {
	return fmt.Sprintf("Questão %d", q.Number)
}
