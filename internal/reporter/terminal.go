package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Skufu/refractplan/internal/eligibility"
	"github.com/Skufu/refractplan/internal/model"
	"github.com/Skufu/refractplan/internal/warnings"
)

var batchHeaders = []string{
	"Row",
	"PatientID",
	"Post-op K1",
	"Post-op K2",
	"Post-op Kavg",
	"Ablation Depth",
	"Post-op Pachymetry",
	"Post-op BCVA",
	"Recommended Surgery",
	"Warnings",
}

// TerminalReporter writes human-readable results.
type TerminalReporter struct {
	w      io.Writer
	styles *Styles
}

func NewTerminalReporter(w io.Writer, styles *Styles) *TerminalReporter {
	if styles == nil {
		styles = NewStyles(false)
	}
	return &TerminalReporter{w: w, styles: styles}
}

func (r *TerminalReporter) ReportCase(res model.CaseResult) error {
	s := r.styles
	title := "Case"
	if res.PatientID != "" {
		title = "Patient " + res.PatientID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.Header.Render(title),
		s.Muted.Render(fmt.Sprintf("(%s, %s formula)", res.Refraction, res.AblationFormula)))

	lines := [][2]string{
		{"Spherical equivalent", diopters(res.SphericalEquivalent)},
		{"Pre-op Kavg", diopters(res.KAvgPre)},
		{"Post-op K1", diopters(res.K1Post)},
		{"Post-op K2", diopters(res.K2Post)},
		{"Post-op Kavg", diopters(res.KAvgPost)},
		{"Ablation depth", microns(res.AblationDepth)},
		{"Post-op Pachymetry", microns(res.PachymetryPost)},
		{"Post-op BCVA", number(res.BCVAPost)},
		{"Eligible", eligibleList(res.Eligibility)},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "  %s %s\n", s.Label.Render(fmt.Sprintf("%-22s", l[0])), s.Value.Render(l[1]))
	}

	rec := s.Success.Render(s.IconOK + " " + res.Recommendation)
	if res.Recommendation == eligibility.NoSuitableProcedure {
		rec = s.Error.Render(s.IconError + " " + res.Recommendation)
	}
	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render(fmt.Sprintf("%-22s", "Recommended Surgery")), rec)

	if len(res.Warnings) == 0 {
		fmt.Fprintf(&b, "  %s %s\n", s.Label.Render(fmt.Sprintf("%-22s", "Warnings")), s.Value.Render(warnings.None))
	} else {
		fmt.Fprintf(&b, "  %s\n", s.Label.Render("Warnings"))
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "    %s\n", s.Warning.Render(s.IconWarning+" "+w))
		}
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TerminalReporter) ReportBatch(res model.BatchResult) error {
	s := r.styles

	t := table.New().
		Border(s.BorderSet).
		BorderStyle(s.Border).
		Headers(batchHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, row := range res.Rows {
		t.Row(batchRow(row)...)
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")

	for _, row := range res.Rows {
		if row.Rejected() {
			fmt.Fprintf(&b, "%s\n", s.Error.Render(s.IconError+" "+row.Error))
		}
	}

	sum := res.Summary
	line := fmt.Sprintf("%d rows: %d evaluated, %d rejected", sum.Total, sum.Evaluated, sum.Rejected)
	if sum.Rejected > 0 {
		b.WriteString(s.Warning.Render(s.IconWarning+" "+line) + "\n")
	} else {
		b.WriteString(s.Success.Render(s.IconOK+" "+line) + "\n")
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func batchRow(row model.BatchRowResult) []string {
	if row.Rejected() {
		return []string{strconv.Itoa(row.Row), row.PatientID, "-", "-", "-", "-", "-", "-", "rejected", "-"}
	}
	res := row.Result
	return []string{
		strconv.Itoa(row.Row),
		row.PatientID,
		number(res.K1Post),
		number(res.K2Post),
		number(res.KAvgPost),
		number(res.AblationDepth),
		number(res.PachymetryPost),
		number(res.BCVAPost),
		res.Recommendation,
		res.WarningSummary(),
	}
}

func eligibleList(f eligibility.Flags) string {
	var out []string
	if f.LASIK {
		out = append(out, eligibility.LASIK.String())
	}
	if f.PRK {
		out = append(out, eligibility.PRK.String())
	}
	if f.Phakic {
		out = append(out, eligibility.PhakicIOL.String())
	}
	if f.Pseudophakic {
		out = append(out, eligibility.PseudophakicIOL.String())
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ", ")
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func diopters(v float64) string {
	return number(v) + " D"
}

func microns(v float64) string {
	return number(v) + " µm"
}
