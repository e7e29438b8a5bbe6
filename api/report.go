package api

import (
	"encoding/csv"
	"io"

	"github.com/warp/attendance-engine/productivity"
)

var reportHeader = []string{"Date", "Out Time", "In Time", "Delay Time", "Delay Type", "Deduction Amount", "Status", "Remarks"}

// writeReportCSV writes the delay report with the same columns the UI shows.
func writeReportCSV(w io.Writer, rows []productivity.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.DisplayDate,
			row.OutTime,
			row.InTime,
			row.DelayTime,
			row.DelayType,
			row.DeductionAmount,
			string(row.Status),
			row.Remarks,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
