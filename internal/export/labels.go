package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/guttosm/pallet-service/internal/i18n"
)

// LabelInfo is the data encoded into the QR code of a pallet label.
type LabelInfo struct {
	OrderID   string   `json:"order_id"`
	PackageID string   `json:"package_id"`
	Sequence  int      `json:"seq"`
	Pallet    string   `json:"pallet"`
	Products  []string `json:"products"`
	Items     int      `json:"items"`
	Weight    string   `json:"weight_kg"`
}

// Label sheet layout: 2 columns x 4 rows of 90 x 65 mm on A4.
const (
	labelWidth    = 90.0
	labelHeight   = 65.0
	labelCols     = 2
	labelRows     = 4
	labelsPerPage = labelCols * labelRows
	labelMarginX  = (pageWidth - labelCols*labelWidth) / 2
	labelMarginY  = (pageHeight - labelRows*labelHeight) / 2
	qrSize        = 38.0
	labelPadding  = 4.0
)

// CollectLabels returns one label per package carrying a pallet, numbered in plan order.
func CollectLabels(plan LoadingPlan) []LabelInfo {
	weights := make(map[string]string, len(plan.Totals.Packages))
	for _, pt := range plan.Totals.Packages {
		weights[pt.PackageID] = pt.Weight.StringFixed(1)
	}

	var labels []LabelInfo
	for _, pkg := range plan.Packages {
		if !pkg.HasPallet() {
			continue
		}
		info := LabelInfo{
			OrderID:   plan.Order.ID,
			PackageID: pkg.ID,
			Sequence:  len(labels) + 1,
			Pallet:    pkg.Pallet.Name,
			Products:  make([]string, 0, len(pkg.Products)),
			Weight:    weights[pkg.ID],
		}
		for _, p := range pkg.Products {
			info.Products = append(info.Products, p.ID)
			info.Items += p.Count
		}
		if info.Weight == "" {
			info.Weight = "0.0"
		}
		labels = append(labels, info)
	}
	return labels
}

func (r *renderer) renderLabels(labels []LabelInfo) error {
	pdf := r.pdf
	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		pos := i % labelsPerPage
		x := labelMarginX + float64(pos%labelCols)*labelWidth
		y := labelMarginY + float64(pos/labelCols)*labelHeight
		if err := r.renderLabel(x, y, label); err != nil {
			return fmt.Errorf("failed to render label for package %s: %w", label.PackageID, err)
		}
	}
	return nil
}

// renderLabel draws one label with its QR code on the right.
func (r *renderer) renderLabel(x, y float64, info LabelInfo) error {
	pdf := r.pdf
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.PackageID, info.Sequence)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 10, fmt.Sprintf("#%d", info.Sequence), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetX(textX)
	pdf.CellFormat(textW, 5, r.encode(truncate(pdf, info.OrderID, textW)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	lines := []string{
		truncate(pdf, info.Pallet, textW),
		fmt.Sprintf("%s: %d", r.translate(i18n.DocKeyCount), info.Items),
		fmt.Sprintf("%s: %s", r.translate(i18n.DocKeyWeight), info.Weight),
	}
	for _, line := range lines {
		pdf.SetX(textX)
		pdf.CellFormat(textW, 4.5, r.encode(line), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(textX, y+labelHeight-labelPadding-3)
	pdf.CellFormat(textW, 3, truncate(pdf, info.PackageID, textW), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}
