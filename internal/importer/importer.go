// Package importer reads invoice line items from CSV and Excel uploads.
// It detects the CSV delimiter, maps columns by header aliases and turns
// malformed numeric cells into warnings instead of failing the upload.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported invoice format")
	// ErrEmptyInvoice is returned when the upload holds no rows.
	ErrEmptyInvoice = errors.New("invoice is empty")
	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New("required columns not found in header")
)

// Column roles.
const (
	ColumnID        = "id"
	ColumnName      = "name"
	ColumnCount     = "count"
	ColumnWidth     = "width"
	ColumnHeight    = "height"
	ColumnDepth     = "depth"
	ColumnWeightStd = "weight_std"
	ColumnWeightEco = "weight_eco"
	ColumnWeightPre = "weight_pre"
)

// positionalColumns is the column order assumed for files without a header.
var positionalColumns = []string{
	ColumnID, ColumnName, ColumnCount, ColumnWidth, ColumnHeight, ColumnDepth,
	ColumnWeightStd, ColumnWeightEco, ColumnWeightPre,
}

var requiredColumns = []string{ColumnCount, ColumnWidth, ColumnHeight, ColumnDepth}

// headerAliases maps column roles to accepted header names (lowercase).
var headerAliases = map[string][]string{
	ColumnID:        {"id", "sku", "code", "article", "article no", "item no", "product id", "artikel"},
	ColumnName:      {"name", "description", "desc", "product", "label", "item", "omschrijving", "descricao"},
	ColumnCount:     {"count", "qty", "quantity", "pcs", "pieces", "amount", "aantal", "quantidade"},
	ColumnWidth:     {"width", "w", "breedte", "largura"},
	ColumnHeight:    {"height", "h", "hoogte", "altura"},
	ColumnDepth:     {"depth", "d", "length", "len", "l", "diepte", "lengte", "profundidade"},
	ColumnWeightStd: {"weight", "weight_std", "weight std", "kg", "gewicht", "peso"},
	ColumnWeightEco: {"weight_eco", "weight eco", "eco"},
	ColumnWeightPre: {"weight_pre", "weight pre", "pre", "premium"},
}

// Result holds the products read from an invoice together with row-level findings.
type Result struct {
	Products []model.Product `json:"products"`
	// Warnings lists values that were coerced or generated
	Warnings []string `json:"warnings,omitempty"`
}

// ColumnMapping maps column roles to their index; roles not present are absent.
type ColumnMapping map[string]int

func (m ColumnMapping) cell(row []string, role string) string {
	idx, ok := m[role]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Option configures an Importer.
type Option func(*Importer)

// WithIDGenerator sets the generator used for rows without an id.
func WithIDGenerator(gen func() string) Option {
	return func(i *Importer) {
		if gen != nil {
			i.newID = gen
		}
	}
}

// Importer converts invoice files into products.
type Importer struct {
	newID func() string
}

// New creates an importer.
func New(opts ...Option) *Importer {
	i := &Importer{newID: uuid.NewString}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import reads an invoice, choosing the parser by file extension.
func (i *Importer) Import(filename string, r io.Reader) (Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		data, err := io.ReadAll(r)
		if err != nil {
			return Result{}, fmt.Errorf("failed to read invoice: %w", err)
		}
		return i.ImportCSV(data)
	case ".xlsx", ".xlsm":
		return i.ImportExcel(r)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ImportCSV reads a delimited invoice, detecting the delimiter.
func (i *Importer) ImportCSV(data []byte) (Result, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{}, ErrEmptyInvoice
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	return i.fromRows(records, "line")
}

// ImportExcel reads the first sheet of an XLSX workbook.
func (i *Importer) ImportExcel(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, ErrEmptyInvoice
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return i.fromRows(rows, "row")
}

// DetectDelimiter picks the delimiter that splits the most rows into the same
// number of columns as the first row. Comma wins ties.
func DetectDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		consistent := 0
		for _, row := range records {
			if len(row) == len(records[0]) {
				consistent++
			}
		}
		if score := consistent*10 + len(records[0]); score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// DetectColumns maps a header row by alias. It returns false, with the
// positional mapping, when no cell matches a known alias.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{}
	for idx, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			if _, taken := mapping[role]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					mapping[role] = idx
					break
				}
			}
		}
	}
	if len(mapping) > 0 {
		return mapping, true
	}

	positional := ColumnMapping{}
	for idx, role := range positionalColumns {
		positional[role] = idx
	}
	return positional, false
}

func (i *Importer) fromRows(rows [][]string, rowPrefix string) (Result, error) {
	if len(rows) == 0 {
		return Result{}, ErrEmptyInvoice
	}

	result := Result{Products: []model.Product{}}
	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		var missing []string
		for _, role := range requiredColumns {
			if _, ok := mapping[role]; !ok {
				missing = append(missing, role)
			}
		}
		if len(missing) > 0 {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
		}
	} else if _, numeric := parseNumber(mapping.cell(rows[0], ColumnCount)); !numeric {
		start = 1
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s 1: unrecognized header skipped", rowPrefix))
	}

	seen := make(map[string]struct{})
	for idx := start; idx < len(rows); idx++ {
		row := rows[idx]
		if isEmptyRow(row) {
			continue
		}
		label := fmt.Sprintf("%s %d", rowPrefix, idx+1)
		product, warnings := i.parseRow(row, mapping, label)
		result.Warnings = append(result.Warnings, warnings...)

		if _, dup := seen[product.ID]; dup {
			id := i.newID()
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: duplicate id %q replaced by %q", label, product.ID, id))
			product.ID = id
		}
		seen[product.ID] = struct{}{}
		result.Products = append(result.Products, product)
	}

	if len(result.Products) == 0 {
		return result, ErrEmptyInvoice
	}
	return result, nil
}

// parseRow builds a product from a row. Every malformed value is coerced and reported.
func (i *Importer) parseRow(row []string, mapping ColumnMapping, label string) (model.Product, []string) {
	var warnings []string
	number := func(role string) float64 {
		raw := mapping.cell(row, role)
		if raw == "" {
			return 0
		}
		v, ok := parseNumber(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: invalid %s %q, using 0", label, role, raw))
		}
		return v
	}

	p := model.Product{
		ID:   mapping.cell(row, ColumnID),
		Name: mapping.cell(row, ColumnName),
		Dimension: model.NewDimension(
			number(ColumnWidth),
			number(ColumnHeight),
			number(ColumnDepth),
		).Safe(),
		Weights: model.Weights{
			Std: number(ColumnWeightStd),
			Eco: number(ColumnWeightEco),
			Pre: number(ColumnWeightPre),
		},
	}

	rawCount := mapping.cell(row, ColumnCount)
	count, ok := parseNumber(rawCount)
	switch {
	case !ok || count < 1 || count > math.MaxInt32:
		warnings = append(warnings, fmt.Sprintf("%s: invalid count %q, using 1", label, rawCount))
		p.Count = 1
	case count != float64(int(count)):
		warnings = append(warnings, fmt.Sprintf("%s: fractional count %q rounded down", label, rawCount))
		p.Count = int(count)
	default:
		p.Count = int(count)
	}

	if p.ID == "" {
		p.ID = i.newID()
		warnings = append(warnings, fmt.Sprintf("%s: missing id, generated %q", label, p.ID))
	}
	if strings.Contains(p.ID, model.PartSeparator) {
		id := strings.ReplaceAll(p.ID, model.PartSeparator, "-")
		warnings = append(warnings, fmt.Sprintf("%s: id %q renamed to %q", label, p.ID, id))
		p.ID = id
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	return p, warnings
}

// parseNumber reads a decimal with either a dot or a comma as separator.
// Anything else yields 0 and false.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
