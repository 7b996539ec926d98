// Package export renders loading plans to PDF, including QR-coded pallet labels.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/i18n"
)

// ErrNothingToExport is returned for plans without any product.
var ErrNothingToExport = errors.New("plan has no products to export")

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
	rowHeight    = 6.0
)

// columns of the product tables, widths in mm.
var productColumns = []struct {
	key   string
	width float64
	align string
}{
	{i18n.DocKeyProduct, 35, "L"},
	{i18n.DocKeyName, 60, "L"},
	{i18n.DocKeyCount, 20, "R"},
	{i18n.DocKeyDimensions, 40, "C"},
	{i18n.DocKeyWeight, 25, "R"},
}

// LoadingPlan is the read model rendered into the document.
type LoadingPlan struct {
	Order       model.Order
	Packages    []model.Package
	Pool        []model.Product
	Totals      model.Totals
	GeneratedAt time.Time
}

// Option configures a rendering.
type Option func(*renderer)

// WithLocale selects the language of headings.
func WithLocale(locale string) Option {
	return func(r *renderer) {
		r.translate = i18n.GetTranslator().For(locale)
	}
}

// WithoutLabels omits the pallet label pages.
func WithoutLabels() Option {
	return func(r *renderer) {
		r.labels = false
	}
}

type renderer struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	encode    func(string) string
	labels    bool
}

func (r *renderer) t(key string) string {
	return r.encode(r.translate(key))
}

// WritePlan renders plan as a PDF to w: a summary, one table per loaded
// package, the products left in the pool and a page of pallet labels.
func WritePlan(w io.Writer, plan LoadingPlan, opts ...Option) error {
	if !hasProducts(plan) {
		return ErrNothingToExport
	}
	if plan.GeneratedAt.IsZero() {
		plan.GeneratedAt = time.Now().UTC()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(fmt.Sprintf("Loading plan %s", plan.Order.ID), true)

	r := &renderer{
		pdf:       pdf,
		translate: i18n.GetTranslator().For(i18n.DefaultLocale),
		encode:    pdf.UnicodeTranslatorFromDescriptor(""),
		labels:    true,
	}
	for _, opt := range opts {
		opt(r)
	}

	pdf.AddPage()
	r.renderHeader(plan)
	r.renderSummary(plan)

	fills := make(map[string]model.PackageTotals, len(plan.Totals.Packages))
	for _, pt := range plan.Totals.Packages {
		fills[pt.PackageID] = pt
	}
	seq := 0
	for _, pkg := range plan.Packages {
		if !pkg.HasPallet() {
			continue
		}
		seq++
		r.renderPackage(plan.Order, seq, pkg, fills[pkg.ID])
	}
	if len(plan.Pool) > 0 {
		r.section(r.t(i18n.DocKeyPool))
		r.renderProducts(plan.Order, plan.Pool)
	}

	if r.labels {
		if err := r.renderLabels(CollectLabels(plan)); err != nil {
			return err
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func hasProducts(plan LoadingPlan) bool {
	if len(plan.Pool) > 0 {
		return true
	}
	for _, pkg := range plan.Packages {
		if len(pkg.Products) > 0 {
			return true
		}
	}
	return false
}

func (r *renderer) renderHeader(plan LoadingPlan) {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 10, fmt.Sprintf("%s %s", r.t(i18n.DocKeyTitle), r.encode(plan.Order.ID)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	generated := fmt.Sprintf("%s: %s", r.t(i18n.DocKeyGenerated), plan.GeneratedAt.Format("2006-01-02 15:04 MST"))
	pdf.CellFormat(contentWidth, 5, generated, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	y := pdf.GetY() + 2
	pdf.Line(marginLeft, y, pageWidth-marginRight, y)
	pdf.SetY(y + 4)
}

func (r *renderer) renderSummary(plan LoadingPlan) {
	order, totals := plan.Order, plan.Totals
	truck := order.Truck.Name
	if truck == "" {
		truck = order.Truck.ID
	}
	d := order.Truck.Dimension.Safe()
	truck = fmt.Sprintf("%s %.0f x %.0f x %.0f cm, max %.0f kg", truck, d.Width, d.Height, d.Depth, order.Truck.MaxWeight)

	items := []struct {
		key   string
		value string
	}{
		{i18n.DocKeyOrder, order.ID},
		{i18n.DocKeyReference, order.Reference},
		{i18n.DocKeyTruck, truck},
		{i18n.DocKeyWeightTier, string(totals.WeightTier)},
		{i18n.DocKeyTotalWeight, totals.TotalWeight.StringFixed(1)},
		{i18n.DocKeyLinearMeters, totals.LinearMeters.StringFixed(2)},
		{i18n.DocKeyRemainingArea, totals.RemainingArea.StringFixed(2)},
		{i18n.DocKeyRemainingWeight, totals.RemainingWeight.StringFixed(1)},
	}

	pdf := r.pdf
	for _, item := range items {
		if item.value == "" {
			continue
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(55, rowHeight, r.t(item.key)+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentWidth-55, rowHeight, r.encode(item.value), "", 1, "L", false, 0, "")
	}

	if totals.Overweight {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentWidth, 8, r.t(i18n.DocKeyOverweight), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

func (r *renderer) renderPackage(order model.Order, seq int, pkg model.Package, totals model.PackageTotals) {
	title := fmt.Sprintf("%s %d: %s", r.t(i18n.DocKeyPackage), seq, r.encode(pkg.Pallet.Name))
	if len(pkg.Products) > 0 {
		title += fmt.Sprintf(" (%s %d%%, %s kg)", r.t(i18n.DocKeyFill), totals.FillPercentage, totals.Weight.StringFixed(1))
	}
	r.section(title)
	if len(pkg.Products) == 0 {
		r.pdf.SetFont("Helvetica", "I", 9)
		r.pdf.CellFormat(contentWidth, rowHeight, r.t(i18n.DocKeyEmpty), "", 1, "L", false, 0, "")
		return
	}
	r.renderProducts(order, pkg.Products)
}

func (r *renderer) section(title string) {
	r.ensureSpace(3 * rowHeight)
	pdf := r.pdf
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")
}

func (r *renderer) renderProducts(order model.Order, products []model.Product) {
	r.tableHeader()
	pdf := r.pdf
	pdf.SetFont("Helvetica", "", 9)
	for i, p := range products {
		if r.ensureSpace(rowHeight) {
			r.tableHeader()
			pdf.SetFont("Helvetica", "", 9)
		}
		d := p.Dimension.Safe()
		values := []string{
			r.encode(p.ID),
			r.encode(truncate(pdf, p.Name, productColumns[1].width-2)),
			fmt.Sprintf("%d", p.Count),
			fmt.Sprintf("%g x %g x %g", d.Width, d.Height, d.Depth),
			fmt.Sprintf("%.1f", p.Weight(order.WeightTier)),
		}
		fill := i%2 == 1
		pdf.SetFillColor(242, 242, 242)
		for c, col := range productColumns {
			pdf.CellFormat(col.width, rowHeight, values[c], "", 0, col.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (r *renderer) tableHeader() {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	for _, col := range productColumns {
		pdf.CellFormat(col.width, rowHeight, r.t(col.key), "B", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)
}

// ensureSpace starts a new page when fewer than height mm remain. It reports
// whether a page was added.
func (r *renderer) ensureSpace(height float64) bool {
	if r.pdf.GetY()+height <= pageHeight-marginBottom {
		return false
	}
	r.pdf.AddPage()
	return true
}

// truncate shortens s with an ellipsis to fit width at the current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
