package export

import "strings"

// NormalizeFormat coerces format values into known aliases with defaults applied.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "", string(FormatCSV):
		return FormatCSV
	case "excel", "xls":
		return FormatXLSX
	case "jsonl", "jsonlines":
		return FormatNDJSON
	case "sqlite3", "db":
		return FormatSQLite
	default:
		return Format(normalized)
	}
}

// ContentType returns the MIME type of an export format.
func ContentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatNDJSON:
		return "application/x-ndjson"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}
