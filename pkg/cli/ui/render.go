package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"cropdoc/entities"
	"cropdoc/pkg/client"
)

// newTable builds a bordered table. Styling is applied per cell so ANSI
// codes never count toward column widths. highCol marks a column whose
// high or critical values are highlighted, -1 for none.
func newTable(headers []string, rows [][]string, highCol int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return Styles.Header
			case col == highCol && row >= 0 && row < len(rows) && severe(rows[row][col]):
				return Styles.High
			default:
				return Styles.Cell
			}
		})
	return t.String() + "\n"
}

func severe(v string) bool {
	return strings.EqualFold(v, string(entities.SeverityHigh)) || strings.EqualFold(v, string(entities.SeverityCritical))
}

// RenderCrops lays the crop listing out as an aligned table.
func RenderCrops(crops []client.CropSummary) string {
	rows := make([][]string, 0, len(crops))
	for _, c := range crops {
		rows = append(rows, []string{c.ID, c.Name, c.ScientificName, strconv.Itoa(c.DiseaseCount)})
	}
	return newTable([]string{"ID", "NAME", "SCIENTIFIC NAME", "DISEASES"}, rows, -1)
}

// RenderDiseases lists diseases one per row with severity and spread.
func RenderDiseases(ds []entities.DiseaseInfo) string {
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, []string{d.ID, d.Name, d.Crop, string(d.Severity), string(d.SpreadRate)})
	}
	return newTable([]string{"ID", "NAME", "CROP", "SEVERITY", "SPREAD"}, rows, 3)
}

// RenderDiagnosis formats one analysis result for the terminal.
func RenderDiagnosis(r *entities.DiagnosisResult) string {
	var b strings.Builder
	if r.IsIrrelevant {
		fmt.Fprintf(&b, "%s\n%s\n", Bold("Not a plant leaf"), r.IrrelevantReason)
		return b.String()
	}
	fmt.Fprintf(&b, "%s %s\n", Bold("Disease:"), r.Disease)
	fmt.Fprintf(&b, "%s %d%%\n", Bold("Confidence:"), r.Confidence)
	fmt.Fprintf(&b, "%s %s\n", Bold("Severity:"), r.Severity)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", Bold(title))
		for _, it := range items {
			fmt.Fprintf(&b, "  • %s\n", it)
		}
	}
	section("Symptoms", r.Symptoms)
	section("Treatment", r.Treatment)
	section("Prevention", r.Prevention)
	return b.String()
}

// RenderHistory lists past diagnoses, newest first as returned by the server.
func RenderHistory(recs []entities.DiagnosisRecord) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.CreatedAt.Format("2006-01-02 15:04"), r.CropType, r.Disease, fmt.Sprintf("%d%%", r.Confidence), r.ID})
	}
	return newTable([]string{"DATE", "CROP", "DISEASE", "CONFIDENCE", "ID"}, rows, -1)
}
