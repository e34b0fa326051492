// Package export renders compare matrices for people who work in spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/sourcing/internal/domain"
)

const MatrixSheet = "Matrix"

var fixedColumns = []string{"Supplier model", "Factory", "Link status", "Last price", "Currency", "Priority", "Comments"}

// WriteMatrix writes the matrix as a single sheet workbook: one row per
// compare line, the fixed columns first and then one column per param in
// matrix order. Cells without a measurement stay empty.
func WriteMatrix(w io.Writer, m *domain.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatrixSheet); err != nil {
		return err
	}
	header := make([]any, 0, len(fixedColumns)+len(m.Params))
	for _, c := range fixedColumns {
		header = append(header, c)
	}
	for _, ep := range m.Params {
		header = append(header, paramHeader(ep))
	}
	if err := f.SetSheetRow(MatrixSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(MatrixSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, r := range m.Rows {
		row := make([]any, 0, len(header))
		row = append(row, r.SupplierModel, r.FactoryName, r.LinkStatus)
		if r.LastPrice.Valid {
			price, _ := r.LastPrice.Decimal.Float64()
			row = append(row, price)
		} else {
			row = append(row, nil)
		}
		row = append(row, r.Currency)
		if r.EngineerPriority != nil {
			row = append(row, *r.EngineerPriority)
		} else {
			row = append(row, nil)
		}
		if r.EngineerComments != nil {
			row = append(row, *r.EngineerComments)
		} else {
			row = append(row, nil)
		}
		for _, ep := range m.Params {
			c, ok := r.Values[ep.Param.Code]
			if !ok {
				row = append(row, nil)
				continue
			}
			row = append(row, cellText(c))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MatrixSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func paramHeader(ep domain.EffectiveParam) string {
	h := ep.Param.Name
	if ep.Param.UOMDefault != "" {
		h = fmt.Sprintf("%s, %s", h, ep.Param.UOMDefault)
	}
	if ep.Required {
		h += " *"
	}
	return h
}

func cellText(c domain.Cell) string {
	s := c.Value
	if c.UOM != "" {
		s += " " + c.UOM
	}
	if c.ConditionTag != "" {
		s += " (" + c.ConditionTag + ")"
	}
	return s
}
