package sheets

import (
	"context"
	"fmt"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// SetupResult reports what InitWorksheet changed
type SetupResult struct {
	Created bool
	Reset   bool
	SheetID int64
}

// InitWorksheet creates the worksheet with a formatted, frozen header row.
// An existing worksheet is left alone unless reset is set, in which case its values are cleared first.
func (s *Store) InitWorksheet(ctx context.Context, reset bool) (SetupResult, error) {
	log := logger.FromContext(ctx)

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return SetupResult{}, fmt.Errorf("%s: %w", ErrMsgSetupFailed, err)
	}

	var result SetupResult
	found := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.worksheet {
			result.SheetID = sh.Properties.SheetId
			found = true
			break
		}
	}

	switch {
	case !found:
		resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				AddSheet: &gsheets.AddSheetRequest{
					Properties: &gsheets.SheetProperties{
						Title: s.worksheet,
						GridProperties: &gsheets.GridProperties{
							RowCount:    newSheetRows,
							ColumnCount: newSheetColumns,
						},
					},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return SetupResult{}, fmt.Errorf("%s: %w", ErrMsgSetupFailed, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
			result.SheetID = resp.Replies[0].AddSheet.Properties.SheetId
		}
		result.Created = true
		log.Info(LogMsgWorksheetCreated, "worksheet", s.worksheet, "sheet_id", result.SheetID)
	case reset:
		if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, s.sheetRange(), &gsheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return SetupResult{}, fmt.Errorf("%s: %w", ErrMsgSetupFailed, err)
		}
		result.Reset = true
		log.Info(LogMsgWorksheetReset, "worksheet", s.worksheet)
	default:
		log.Info(LogMsgWorksheetExists, "worksheet", s.worksheet)
		return result, nil
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(1), &gsheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption(valueInputRaw).Context(ctx).Do(); err != nil {
		return SetupResult{}, fmt.Errorf("%s: %w", ErrMsgSetupFailed, err)
	}

	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, headerFormatRequest(result.SheetID)).Context(ctx).Do(); err != nil {
		return SetupResult{}, fmt.Errorf("%s: %w", ErrMsgSetupFailed, err)
	}

	log.Info(LogMsgHeaderWritten, "worksheet", s.worksheet, "columns", len(Headers))
	return result, nil
}

// headerFormatRequest styles and freezes the first row
func headerFormatRequest(sheetID int64) *gsheets.BatchUpdateSpreadsheetRequest {
	return &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{
			{
				RepeatCell: &gsheets.RepeatCellRequest{
					Range: &gsheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(len(Headers)),
					},
					Cell: &gsheets.CellData{
						UserEnteredFormat: &gsheets.CellFormat{
							BackgroundColor:     &gsheets.Color{Red: 0.2, Green: 0.6, Blue: 0.86},
							HorizontalAlignment: "CENTER",
							TextFormat: &gsheets.TextFormat{
								Bold:            true,
								ForegroundColor: &gsheets.Color{Red: 1, Green: 1, Blue: 1},
							},
						},
					},
					Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
				},
			},
			{
				UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
					Properties: &gsheets.SheetProperties{
						SheetId:        sheetID,
						GridProperties: &gsheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}
}
