package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
	"github.com/dimadisaputra/threads-scraper/internal/threads"
)

// timestampLayout is how reply timestamps are rendered in tabular exports.
const timestampLayout = "2006-01-02 15:04:05"

// sheetName is the worksheet that holds the records in XLSX exports.
const sheetName = "Replies"

// columns is the tabular header row. The order must match recordCells.
var columns = []string{
	"id", "code", "timestamp", "like_count", "direct_reply_count",
	"repost_count", "quote_count", "user_id", "username", "display_name",
	"is_verified", "profile_pic_url", "text", "media_type",
	"accessibility_caption", "img_urls",
}

// WriteFile writes all records to a single file named replies-<postID>.<ext>
// inside dir, creating the directory if needed. It returns the path of the
// written file. An empty record slice still produces a file.
func WriteFile(dir, postID string, format Format, records []threads.ReplyRecord) (string, error) {
	if records == nil {
		records = []threads.ReplyRecord{}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %v: %w", dir, err, scrapererrors.ErrOutputWrite)
	}

	path := filepath.Join(dir, fmt.Sprintf("replies-%s.%s", postID, format.Extension()))

	var err error
	switch format {
	case FormatJSON:
		err = writeJSON(path, records)
	case FormatCSV:
		err = writeCSV(path, records)
	case FormatXLSX:
		err = writeXLSX(path, records)
	default:
		return "", fmt.Errorf("unsupported export format %q: %w", format, scrapererrors.ErrInvalidInput)
	}
	if err != nil {
		return "", err
	}

	return path, nil
}

// writeJSON writes the records as one indented JSON array.
func writeJSON(path string, records []threads.ReplyRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}
	return nil
}

// writeCSV writes a header row followed by one row per record.
func writeCSV(path string, records []threads.ReplyRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}
	for _, record := range records {
		row := recordCells(record)
		fields := make([]string, len(row))
		for i, cell := range row {
			fields[i] = fmt.Sprint(cell)
		}
		if err := w.Write(fields); err != nil {
			_ = file.Close()
			return fmt.Errorf("writing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flushing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}
	return nil
}

// writeXLSX writes the records to a single worksheet, with the same header
// and column order as the CSV export but typed cells for counts and flags.
func writeXLSX(path string, records []threads.ReplyRecord) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("preparing workbook: %v: %w", err, scrapererrors.ErrOutputWrite)
	}

	headerRow := make([]interface{}, len(columns))
	for i, name := range columns {
		headerRow[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing workbook header: %v: %w", err, scrapererrors.ErrOutputWrite)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("writing workbook row %d: %v: %w", i+2, err, scrapererrors.ErrOutputWrite)
		}
		row := recordCells(record)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing workbook row %d: %v: %w", i+2, err, scrapererrors.ErrOutputWrite)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %v: %w", path, err, scrapererrors.ErrOutputWrite)
	}
	return nil
}

// recordCells flattens a record into tabular cells in column order.
// Image URLs are joined with "|" so they fit a single cell.
func recordCells(r threads.ReplyRecord) []interface{} {
	return []interface{}{
		r.ID,
		r.Code,
		r.Timestamp.Format(timestampLayout),
		r.LikeCount,
		r.DirectReplyCount,
		r.RepostCount,
		r.QuoteCount,
		r.UserID,
		r.Username,
		r.DisplayName,
		r.IsVerified,
		r.ProfilePicURL,
		r.Text,
		r.MediaType,
		r.AccessibilityCaption,
		strings.Join(r.ImageURLs, "|"),
	}
}
