package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"djagency-backend/models"
)

// ExportColumns is the header shared by CSV and spreadsheet exports
var ExportColumns = []string{
	"Evento", "Data do Evento", "DJ", "Produtor", "Valor", "Status", "Situação", "Vencimento", "Pago em", "Comprovante",
}

const exportDateLayout = "2006-01-02"

// ExportRow flattens a payment into the exported field values
func ExportRow(p *models.Payment) []string {
	row := make([]string, len(ExportColumns))
	if ev := p.Event; ev != nil {
		row[0] = ev.EventName
		row[1] = ev.EventDate.Format(exportDateLayout)
		row[6] = PaymentStatusFor(ev, p)
	}
	row[2] = djName(p)
	row[3] = producerName(p)
	row[4] = strconv.FormatFloat(p.Amount, 'f', 2, 64)
	row[5] = p.Status
	if d := p.EffectiveDueDate(); d != nil {
		row[7] = d.Format(exportDateLayout)
	}
	if p.PaidAt != nil {
		row[8] = p.PaidAt.Format(exportDateLayout)
	}
	row[9] = p.PaymentProofURL
	return row
}

// WritePaymentsCSV writes the header and one record per payment
func WritePaymentsCSV(w io.Writer, payments []models.Payment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for i := range payments {
		if err := cw.Write(ExportRow(&payments[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const paymentsSheet = "Pagamentos"

// PaymentsWorkbook renders the payments as an .xlsx document
func PaymentsWorkbook(payments []models.Payment) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", paymentsSheet); err != nil {
		return nil, err
	}

	writeRow := func(rowIdx int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		return f.SetSheetRow(paymentsSheet, cell, &values)
	}

	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i := range payments {
		row := ExportRow(&payments[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		// keep the amount numeric so spreadsheet sums work
		values[4] = payments[i].Amount
		if err := writeRow(i+2, values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.WriteToBuffer()
}
