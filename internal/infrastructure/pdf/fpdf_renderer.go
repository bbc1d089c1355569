package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"clearing_proposals/internal/usecase/interfaces"

	"github.com/go-pdf/fpdf"
)

// Renderer prints a proposal document with fpdf. Output depends only on the
// proposal and its snapshot so the same version always renders the same bytes.
type Renderer struct {
	companyName string
	currency    string
}

var _ interfaces.IPDFRenderer = (*Renderer)(nil)

func NewRenderer(companyName, currency string) *Renderer {
	return &Renderer{companyName: companyName, currency: currency}
}

func (r *Renderer) Render(ctx context.Context, doc interfaces.ProposalDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := doc.Proposal
	snap := doc.Snapshot

	f := fpdf.New("P", "mm", "Letter", "")
	tr := f.UnicodeTranslatorFromDescriptor("")
	f.SetTitle(fmt.Sprintf("Proposal %s v%d", p.ID, p.DocumentVersion), true)
	f.SetAuthor(r.companyName, true)
	f.SetCreationDate(p.CreatedAt.UTC())
	f.SetModificationDate(p.CreatedAt.UTC())
	f.SetCatalogSort(true)
	f.SetMargins(18, 18, 18)
	f.AddPage()

	f.SetFont("Helvetica", "B", 18)
	f.CellFormat(0, 10, tr(r.companyName), "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
	f.CellFormat(0, 6, tr(fmt.Sprintf("Proposal %s  |  version %d  |  %s", shortID(p.ID), p.DocumentVersion, p.CreatedAt.UTC().Format("January 2, 2006"))), "", 1, "L", false, 0, "")
	f.Ln(4)

	section(f, tr, "Prepared for")
	line(f, tr, p.Customer.Name)
	line(f, tr, p.Customer.Email)
	if p.Customer.Phone != "" {
		line(f, tr, p.Customer.Phone)
	}
	line(f, tr, p.Inputs.Address)
	f.Ln(3)

	section(f, tr, "Scope of work")
	pkgName := p.Computed.PackageID
	for _, pkg := range snap.Packages {
		if pkg.ID == p.Computed.PackageID {
			pkgName = fmt.Sprintf("%s (up to %d\" DBH)", pkg.Name, pkg.MaxDBHInches)
		}
	}
	row(f, tr, "Package", pkgName)
	row(f, tr, "Acreage", fmt.Sprintf("%.2f acres", p.Inputs.Acreage))
	if len(p.Inputs.Obstacles) > 0 {
		row(f, tr, "Site conditions", strings.Join(p.Inputs.Obstacles, ", "))
	}
	if p.Inputs.DistanceMiles > 0 {
		row(f, tr, "Travel distance", fmt.Sprintf("%.1f miles", p.Inputs.DistanceMiles))
	}
	for _, id := range p.Inputs.SelectedServiceIDs {
		name := id
		for _, s := range snap.Services {
			if s.ID == id {
				name = s.Name
			}
		}
		row(f, tr, "Add-on", name)
	}
	f.Ln(3)

	section(f, tr, "Pricing")
	c := p.Computed
	row(f, tr, "Subtotal", r.money(c.Subtotal))
	if c.ObstacleAdjustment != 0 {
		row(f, tr, "Site adjustment", r.money(c.ObstacleAdjustment))
	}
	if c.DistanceSurcharge != 0 {
		row(f, tr, "Travel surcharge", r.money(c.DistanceSurcharge))
	}
	if c.ServicesTotal != 0 {
		row(f, tr, "Add-on services", r.money(c.ServicesTotal))
	}
	f.SetFont("Helvetica", "B", 11)
	row(f, tr, "Total", r.money(c.Total))
	f.SetFont("Helvetica", "", 10)
	if p.DepositRequired() {
		row(f, tr, "Deposit due on acceptance", r.money(c.DepositAmount))
	}
	f.Ln(3)

	if len(snap.LegalTerms) > 0 {
		section(f, tr, "Terms")
		f.SetFont("Helvetica", "", 9)
		for i, term := range snap.LegalTerms {
			f.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, term)), "", "L", false)
		}
	}

	f.SetFont("Helvetica", "I", 8)
	f.Ln(4)
	f.CellFormat(0, 5, tr(fmt.Sprintf("Pricing catalog %s v%d", p.SnapshotRef.TemplateID, p.SnapshotRef.Version)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render proposal pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) money(v float64) string {
	return fmt.Sprintf("%s %.2f", r.currency, v)
}

func section(f *fpdf.Fpdf, tr func(string) string, title string) {
	f.SetFont("Helvetica", "B", 12)
	f.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 10)
}

func line(f *fpdf.Fpdf, tr func(string) string, text string) {
	if text == "" {
		return
	}
	f.CellFormat(0, 6, tr(text), "", 1, "L", false, 0, "")
}

func row(f *fpdf.Fpdf, tr func(string) string, label, value string) {
	f.CellFormat(70, 6, tr(label), "", 0, "L", false, 0, "")
	f.CellFormat(0, 6, tr(value), "", 1, "R", false, 0, "")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
