package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matheuss-dsr/dedicandos/internal/questions"
)

// The DOCX path writes a minimal OOXML package directly over archive/zip.
// Word reflows paragraphs automatically, so unlike the PDF path no manual
// page-break estimation is needed.

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
	`<w:pgMar w:top="850" w:right="850" w:bottom="1133" w:left="850"/></w:sectPr></w:body></w:document>`

func renderDOCX(job Job) ([]byte, error) {
	var body strings.Builder
	body.WriteString(documentHeader)

	title := job.Title
	if title == "" {
		title = "Prova"
	}
	body.WriteString(paragraph(title, parOpts{bold: true, size: 32, center: true}))
	body.WriteString(emptyParagraph())

	if s := job.Student; s != nil {
		for _, field := range []struct{ label, value string }{
			{"Nome", s.Name},
			{"Turma", s.Class},
			{"Escola", s.School},
			{"Série", s.Grade},
		} {
			value := field.value
			if value == "" {
				value = "______________________________"
			}
			body.WriteString(paragraph(field.label+": "+value, parOpts{}))
		}
		body.WriteString(emptyParagraph())
	}

	for _, q := range job.Questions {
		writeQuestion(&body, q)
	}

	body.WriteString(documentFooter)
	return packDOCX(body.String())
}

func writeQuestion(body *strings.Builder, q questions.Question) {
	body.WriteString(paragraph(fmt.Sprintf("Questão %d", q.Number), parOpts{bold: true, size: 26}))

	for _, block := range strings.Split(q.EnunciationText, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		body.WriteString(paragraph(block, parOpts{}))
	}

	// All choices go into one paragraph, one "letter) text" line each.
	body.WriteString(paragraph(alternativesBlock(q), parOpts{}))
	body.WriteString(emptyParagraph())
}

type parOpts struct {
	bold   bool
	size   int // half-points; zero means document default
	center bool
}

// paragraph renders one w:p element. Newlines inside text become soft
// line breaks within the same paragraph.
func paragraph(text string, opts parOpts) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if opts.center {
		b.WriteString(`<w:pPr><w:jc w:val="center"/></w:pPr>`)
	}
	b.WriteString("<w:r>")

	var props strings.Builder
	if opts.bold {
		props.WriteString("<w:b/>")
	}
	if opts.size > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/>`, opts.size)
	}
	if props.Len() > 0 {
		b.WriteString("<w:rPr>" + props.String() + "</w:rPr>")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(escapeXML(line))
		b.WriteString("</w:t>")
	}
	b.WriteString("</w:r></w:p>")
	return b.String()
}

func emptyParagraph() string {
	return "<w:p/>"
}

func escapeXML(text string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(text)); err != nil {
		return ""
	}
	return buf.String()
}

func packDOCX(documentXML string) ([]byte, error) {
	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	files := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return out.Bytes(), nil
}
