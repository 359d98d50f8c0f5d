package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows      = 1048576
	excelMaxSheetName = 31
	defaultSheetName  = "Sheet 1"
	defaultDateFormat = "yyyy-mm-dd"
	defaultDateTime   = "yyyy-mm-dd hh:mm:ss"
	defaultTimeFormat = "hh:mm:ss"
	defaultFloatFmt   = "0.00"
)

// XLSXRenderer renders XLSX output.
type XLSXRenderer struct{}

// Render streams rows into a single-sheet XLSX workbook.
func (r XLSXRenderer) Render(ctx context.Context, schema Schema, rows RowIterator, w io.Writer, opts RenderOptions) (RenderStats, error) {
	formatter, err := newFormatContext(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheetName := SheetName(opts.XLSX.SheetName)
	if current := file.GetSheetName(0); current != sheetName {
		file.SetSheetName(current, sheetName)
	}

	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return RenderStats{}, err
	}

	styles, err := buildXLSXStyles(file)
	if err != nil {
		return RenderStats{}, err
	}
	columnStyles, err := styles.forColumns(schema.Columns)
	if err != nil {
		return RenderStats{}, err
	}

	rowIndex := 1
	if !opts.XLSX.OmitHeader {
		headers := make([]any, len(schema.Columns))
		for i, col := range schema.Columns {
			headers[i] = excelize.Cell{StyleID: styles.headerID, Value: columnLabel(col)}
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), headers); err != nil {
			return RenderStats{}, err
		}
		rowIndex++
	}

	maxRows := opts.XLSX.MaxRows
	if maxRows <= 0 || maxRows > excelMaxRows-rowIndex+1 {
		maxRows = excelMaxRows - rowIndex + 1
	}

	stats := RenderStats{}
	err = eachRow(ctx, schema, rows, func(row Row) error {
		stats.Rows++
		if stats.Rows > int64(maxRows) {
			return NewError(KindValidation, "max rows exceeded", nil)
		}

		cells := make([]any, len(row))
		for i, value := range row {
			cell, err := buildXLSXCell(schema.Columns[i], value, formatter, columnStyles[i])
			if err != nil {
				return err
			}
			cells[i] = cell
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), cells); err != nil {
			return err
		}
		rowIndex++
		return nil
	})
	if err != nil {
		return stats, err
	}

	if err := stream.Flush(); err != nil {
		return stats, err
	}

	lw := newLimitedWriter(w, opts.XLSX.MaxBytes)
	if _, err := file.WriteTo(lw); err != nil {
		return stats, err
	}
	stats.Bytes = lw.count
	return stats, nil
}

// SheetName returns a worksheet name Excel accepts: forbidden characters are
// replaced and the name is truncated to 31 characters.
func SheetName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return defaultSheetName
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if runes := []rune(name); len(runes) > excelMaxSheetName {
		name = string(runes[:excelMaxSheetName])
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}

type xlsxStyles struct {
	headerID  int
	dateID    int
	dateTime  int
	timeID    int
	floatID   int
	customIDs map[string]int
	file      *excelize.File
}

func buildXLSXStyles(file *excelize.File) (*xlsxStyles, error) {
	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	styles := &xlsxStyles{headerID: headerID, customIDs: make(map[string]int), file: file}
	for format, target := range map[string]*int{
		defaultDateFormat: &styles.dateID,
		defaultDateTime:   &styles.dateTime,
		defaultTimeFormat: &styles.timeID,
		defaultFloatFmt:   &styles.floatID,
	} {
		id, err := newCustomStyle(file, format)
		if err != nil {
			return nil, err
		}
		*target = id
	}
	return styles, nil
}

func newCustomStyle(file *excelize.File, format string) (int, error) {
	if format == "" {
		return 0, nil
	}
	return file.NewStyle(&excelize.Style{CustomNumFmt: &format})
}

func (s *xlsxStyles) forColumns(columns []Column) ([]int, error) {
	styles := make([]int, len(columns))
	for i, col := range columns {
		if col.Format.Excel != "" {
			custom, err := s.customStyle(col.Format.Excel)
			if err != nil {
				return nil, err
			}
			styles[i] = custom
			continue
		}
		switch normalizeColumnType(col.Type) {
		case "date":
			styles[i] = s.dateID
		case "datetime":
			styles[i] = s.dateTime
		case "time":
			styles[i] = s.timeID
		case "float":
			styles[i] = s.floatID
		}
	}
	return styles, nil
}

func (s *xlsxStyles) customStyle(format string) (int, error) {
	if styleID, ok := s.customIDs[format]; ok {
		return styleID, nil
	}
	styleID, err := newCustomStyle(s.file, format)
	if err != nil {
		return 0, err
	}
	s.customIDs[format] = styleID
	return styleID, nil
}

func buildXLSXCell(col Column, value any, formatter formatContext, styleID int) (excelize.Cell, error) {
	if value == nil {
		return excelize.Cell{Value: ""}, nil
	}

	switch normalizeColumnType(col.Type) {
	case "string":
		return excelize.Cell{Value: stringify(value), StyleID: styleID}, nil
	case "bool":
		boolValue, ok := coerceBool(value)
		if !ok {
			return excelize.Cell{}, NewError(KindValidation, fmt.Sprintf("invalid bool for column %q", col.Name), nil)
		}
		return excelize.Cell{Value: boolValue, StyleID: styleID}, nil
	case "int":
		intValue, ok := coerceInt(value)
		if !ok {
			return excelize.Cell{}, NewError(KindValidation, fmt.Sprintf("invalid int for column %q", col.Name), nil)
		}
		return excelize.Cell{Value: intValue, StyleID: styleID}, nil
	case "float":
		floatValue, ok := coerceFloat(value)
		if !ok {
			return excelize.Cell{}, NewError(KindValidation, fmt.Sprintf("invalid number for column %q", col.Name), nil)
		}
		return excelize.Cell{Value: floatValue, StyleID: styleID}, nil
	case "date", "datetime", "time":
		timeValue, ok := coerceTime(value)
		if !ok {
			return excelize.Cell{}, NewError(KindValidation, fmt.Sprintf("invalid time for column %q", col.Name), nil)
		}
		return excelize.Cell{Value: formatter.applyTimezone(timeValue), StyleID: styleID}, nil
	}

	switch v := value.(type) {
	case time.Time:
		return excelize.Cell{Value: formatter.applyTimezone(v), StyleID: styleID}, nil
	case bool, string, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return excelize.Cell{Value: v, StyleID: styleID}, nil
	default:
		return excelize.Cell{Value: stringify(value), StyleID: styleID}, nil
	}
}
