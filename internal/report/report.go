// Package report renders an EV grant estimate as a one-page A4 PDF quote.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"irishgrants/internal/estimator"
)

// Quote is everything printed on the PDF.
type Quote struct {
	SiteName    string
	SiteURL     string
	State       estimator.State
	GeneratedAt time.Time
}

// Color palette
var (
	cGreen   = [3]int{22, 101, 52}
	cGreenLt = [3]int{34, 139, 74}
	cGreenBg = [3]int{233, 245, 237}
	cAmber   = [3]int{146, 64, 14}
	cInk90   = [3]int{38, 38, 38}
	cInk50   = [3]int{107, 107, 107}
	cInk30   = [3]int{160, 160, 160}
	cInk08   = [3]int{235, 235, 235}
	cWhite   = [3]int{255, 255, 255}
)

const (
	pageW    = 210.0
	marginL  = 20.0
	marginR  = 20.0
	contentW = pageW - marginL - marginR
)

func setFill(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }
func setText(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetTextColor(c[0], c[1], c[2]) }
func setDraw(pdf *gofpdf.Fpdf, c [3]int) { pdf.SetDrawColor(c[0], c[1], c[2]) }

// transliterate maps characters the core PDF fonts cannot encode.
func transliterate(s string) string {
	replacer := strings.NewReplacer(
		"€", "EUR ", "–", "-", "—", "-",
		"‘", "'", "’", "'", "“", "\"", "”", "\"",
		"≤", "<=", "≥", ">=", "\u00a0", " ",
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
		"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
	)
	return replacer.Replace(s)
}

func euro(amount float64) string {
	return transliterate(estimator.FormatEuro(amount))
}

// Render writes the quote as PDF to w.
func Render(w io.Writer, q Quote) error {
	if q.GeneratedAt.IsZero() {
		q.GeneratedAt = time.Now()
	}
	if q.SiteName == "" {
		q.SiteName = "Irish Grants Hub"
	}
	st := estimator.Normalize(q.State)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginL, 15, marginR)
	pdf.SetAutoPageBreak(false, 20)
	pdf.SetTitle(transliterate(q.SiteName+" - EV grant estimate"), false)
	pdf.SetCreator(q.SiteName, false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		setDraw(pdf, cInk08)
		pdf.SetLineWidth(0.3)
		pdf.Line(marginL, pdf.GetY(), pageW-marginR, pdf.GetY())
		pdf.SetY(-11)
		pdf.SetFont("Helvetica", "", 6.5)
		setText(pdf, cInk30)
		pdf.SetX(marginL)
		pdf.CellFormat(contentW/2, 8, transliterate(q.SiteURL), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW/2, 8, q.GeneratedAt.Format("02/01/2006 15:04"), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Header band
	headerH := 48.0
	setFill(pdf, cGreen)
	pdf.Rect(0, 0, pageW, headerH, "F")
	setFill(pdf, cGreenLt)
	pdf.Rect(0, headerH-3, pageW, 3, "F")

	pdf.SetXY(marginL, 14)
	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, cWhite)
	pdf.CellFormat(contentW, 10, transliterate(q.SiteName), "", 1, "L", false, 0, "")

	pdf.SetXY(marginL, 27)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(215, 235, 220)
	pdf.CellFormat(contentW, 6, "SEAI EV Grant Estimate", "", 1, "L", false, 0, "")

	pdf.SetXY(marginL, 35)
	pdf.SetFont("Helvetica", "", 8.5)
	pdf.SetTextColor(185, 215, 195)
	pdf.CellFormat(contentW, 5, "Generated on "+q.GeneratedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")

	// Summary figures
	y := headerH + 12
	colW := contentW / 3
	figures := []struct {
		label string
		value string
		color [3]int
	}{
		{"Vehicle price", euro(st.VehiclePrice), cInk90},
		{"Estimated grant", euro(float64(st.GrantAmount)), cGreen},
		{"Price after grant", euro(st.FinalPrice), cInk90},
	}
	for i, f := range figures {
		x := marginL + float64(i)*colW
		pdf.SetXY(x, y)
		pdf.SetFont("Helvetica", "", 8.5)
		setText(pdf, cInk50)
		pdf.CellFormat(colW, 5, f.label, "", 0, "L", false, 0, "")
		pdf.SetXY(x, y+6)
		pdf.SetFont("Helvetica", "B", 18)
		setText(pdf, f.color)
		pdf.CellFormat(colW, 9, f.value, "", 0, "L", false, 0, "")
	}

	y += 22
	pdf.SetXY(marginL, y)
	pdf.SetFont("Helvetica", "", 9.5)
	setText(pdf, cInk90)
	pdf.CellFormat(contentW, 5, transliterate("County: "+st.SelectedCounty), "", 1, "L", false, 0, "")
	pdf.SetX(marginL)
	pdf.MultiCell(contentW, 5, transliterate(st.Message()), "", "L", false)

	// Tier table
	y = pdf.GetY() + 8
	pdf.SetXY(marginL, y)
	pdf.SetFont("Helvetica", "B", 11)
	setText(pdf, cInk90)
	pdf.CellFormat(contentW, 7, "Grant tiers", "", 1, "L", false, 0, "")

	applied, eligible := estimator.TierFor(st.VehiclePrice)
	rowH := 7.0
	half := contentW / 2
	pdf.SetX(marginL)
	pdf.SetFont("Helvetica", "B", 9)
	setFill(pdf, cInk08)
	setText(pdf, cInk50)
	pdf.CellFormat(half, rowH, "Vehicle price from", "", 0, "L", true, 0, "")
	pdf.CellFormat(half, rowH, "Grant", "", 1, "R", true, 0, "")

	for _, t := range estimator.Tiers() {
		hit := eligible && t == applied
		pdf.SetX(marginL)
		if hit {
			pdf.SetFont("Helvetica", "B", 9.5)
			setFill(pdf, cGreenBg)
			setText(pdf, cGreen)
		} else {
			pdf.SetFont("Helvetica", "", 9.5)
			setFill(pdf, cWhite)
			setText(pdf, cInk90)
		}
		pdf.CellFormat(half, rowH, euro(float64(t.MinPrice)), "B", 0, "L", true, 0, "")
		label := euro(float64(t.Grant))
		if hit {
			label = "> " + label
		}
		pdf.CellFormat(half, rowH, label, "B", 1, "R", true, 0, "")
	}
	pdf.SetX(marginL)
	pdf.SetFont("Helvetica", "", 9.5)
	setText(pdf, cInk50)
	pdf.CellFormat(half, rowH, "Below "+euro(float64(estimator.MinPrice)), "B", 0, "L", false, 0, "")
	pdf.CellFormat(half, rowH, euro(0), "B", 1, "R", false, 0, "")

	// Disclaimer
	pdf.Ln(10)
	pdf.SetX(marginL)
	pdf.SetFont("Helvetica", "I", 7.5)
	setText(pdf, cAmber)
	pdf.MultiCell(contentW, 3.8, transliterate(
		"This is an estimate only. Grant amounts are set by SEAI and can change; "+
			"the dealer applies the grant at the point of sale. "+
			"Always confirm eligibility on seai.ie before you buy."), "", "C", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write pdf: %w", err)
	}
	return nil
}
