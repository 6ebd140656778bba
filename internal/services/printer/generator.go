// Package printer renders acts as printable PDF documents.
package printer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/xelth-com/huissierpro/internal/models"
)

// QRPrefix is prepended to the act id in the verification QR code.
const QRPrefix = "HUISSIERPRO:"

const (
	pageMargin = 18.0
	lineHeight = 5.5
)

// RenderActPDF lays out an act on A4 pages: study header, title, body,
// fee table, evidence count and a QR code encoding the act id.
func RenderActPDF(act models.Act, profile models.Profile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s - %s - page %d", profile.StudyName, act.ID, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	writeHeader(pdf, tr, profile)
	if err := writeQR(pdf, act.ID); err != nil {
		return nil, err
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 15)
	pdf.MultiCell(0, 8, tr(strings.ToUpper(act.Title)), "", "C", false)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s - %s - statut : %s", act.Type, act.Date, act.Status)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeBody(pdf, tr, act.LegalContent)
	writeFees(pdf, tr, act.Fees)

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Pièces jointes : %d", len(act.Evidence))), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render act %s: %w", act.ID, err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, p models.Profile) {
	x := pageMargin
	if name, opts, data, ok := decodeLogo(p.Logo); ok {
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if pdf.Ok() {
			pdf.ImageOptions(name, pageMargin, pageMargin, 22, 0, false, opts, 0, "")
			x += 26
		} else {
			pdf.ClearError()
		}
	}

	pdf.SetXY(x, pageMargin)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 6, tr(strings.ToUpper(p.StudyName)), "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	lines := []string{
		"Maître " + p.Name + ", Huissier de Justice",
		p.Jurisdiction,
		strings.TrimSpace(strings.Trim(p.Address+", "+p.City, ", ")),
		joinNonEmpty(" | ", p.Phone, p.Email),
		joinNonEmpty(" | ", prefixed("Matricule : ", p.Matricule), prefixed("RCCM : ", p.RCCM)),
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		pdf.CellFormat(120, 4.5, tr(l), "", 2, "L", false, 0, "")
	}
	pdf.SetX(pageMargin)
	pdf.Ln(2)
	w, _ := pdf.GetPageSize()
	pdf.Line(pageMargin, pdf.GetY(), w-pageMargin, pdf.GetY())
}

func writeQR(pdf *gofpdf.Fpdf, actID string) error {
	png, err := qrcode.Encode(QRPrefix+actID, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr for act %s: %w", actID, err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr_"+actID, opts, bytes.NewReader(png))

	w, _ := pdf.GetPageSize()
	y := pdf.GetY()
	const size = 24.0
	pdf.ImageOptions("qr_"+actID, w-pageMargin-size, pageMargin, size, size, false, opts, 0, "")
	if y < pageMargin+size {
		pdf.SetY(pageMargin + size)
	}
	return pdf.Error()
}

// writeBody prints the generated Markdown as plain paragraphs: "##" lines
// become headings, "---" a rule, and bold markers are dropped.
func writeBody(pdf *gofpdf.Fpdf, tr func(string) string, content string) {
	w, _ := pdf.GetPageSize()
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			pdf.Ln(lineHeight / 2)
		case line == "---":
			pdf.Line(pageMargin, pdf.GetY()+1, w-pageMargin, pdf.GetY()+1)
			pdf.Ln(3)
		case strings.HasPrefix(line, "#"):
			pdf.SetFont("Arial", "B", 12)
			pdf.MultiCell(0, 7, tr(stripMarkup(strings.TrimLeft(line, "# "))), "", "C", false)
		default:
			pdf.SetFont("Arial", "", 10)
			if strings.HasPrefix(line, "**") {
				pdf.SetFont("Arial", "B", 10)
			}
			pdf.MultiCell(0, lineHeight, tr(stripMarkup(line)), "", "J", false)
		}
	}
}

func writeFees(pdf *gofpdf.Fpdf, tr func(string) string, f *models.Fees) {
	if f == nil {
		return
	}
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, tr("DÉCOMPTE DES FRAIS"), "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)

	rows := []struct {
		label string
		value float64
	}{
		{"Émoluments", f.Emoluments},
		{"Frais de transport", f.Transport},
		{"Droits d'enregistrement", f.Registration},
		{"TVA (18 %)", f.Tax},
	}
	for _, r := range rows {
		pdf.CellFormat(120, 6, tr(r.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(formatAmount(r.value)), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 7, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr(formatAmount(f.Total)), "T", 1, "R", false, 0, "")
}

func decodeLogo(uri string) (string, gofpdf.ImageOptions, []byte, bool) {
	var imageType string
	switch {
	case strings.HasPrefix(uri, "data:image/png;base64,"):
		imageType = "PNG"
	case strings.HasPrefix(uri, "data:image/jpeg;base64,"), strings.HasPrefix(uri, "data:image/jpg;base64,"):
		imageType = "JPG"
	default:
		return "", gofpdf.ImageOptions{}, nil, false
	}
	data, err := base64.StdEncoding.DecodeString(uri[strings.IndexByte(uri, ',')+1:])
	if err != nil || len(data) == 0 {
		return "", gofpdf.ImageOptions{}, nil, false
	}
	return "logo", gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}, data, true
}

func stripMarkup(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "**", ""), "*", "")
}

// formatAmount renders a FCFA amount with a space every three digits.
func formatAmount(v float64) string {
	whole := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && r != '-' && (len(whole)-i)%3 == 0 && whole[i-1] != '-' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String() + " FCFA"
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func prefixed(prefix, v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return prefix + v
}
