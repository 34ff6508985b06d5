package serviceImp

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"cropdoc/entities"
)

const historySheet = "History"

var historyHeader = []any{"Date", "Crop", "Disease", "Confidence", "Severity", "Symptoms", "Treatment", "Prevention", "Irrelevant", "Image"}

func writeHistoryWorkbook(w io.Writer, recs []entities.DiagnosisRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		return err
	}
	for i, r := range recs {
		row := []any{
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			r.CropType,
			r.Disease,
			r.Confidence,
			r.Severity,
			strings.Join(r.Symptoms, "; "),
			strings.Join(r.Treatment, "; "),
			strings.Join(r.Prevention, "; "),
			r.IsIrrelevant,
			r.ImagePath,
		}
		if err := f.SetSheetRow(historySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
