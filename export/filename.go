package export

import (
	"bytes"
	"strings"
	"text/template"
	"time"
)

const defaultFilenamePattern = "{{.Name}}_{{.Timestamp}}"

type filenameData struct {
	Name      string
	Format    string
	Timestamp string
	Date      string
}

// Filename renders a download filename from a text/template pattern. The
// pattern sees Name, Format, Timestamp and Date; the format extension is
// appended when missing. Path separators and quotes are replaced.
func Filename(pattern, name string, format Format, now time.Time) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultFilenamePattern
	}
	if strings.TrimSpace(name) == "" {
		name = "table"
	}

	tmpl, err := template.New("filename").Parse(pattern)
	if err != nil {
		return "", NewError(KindValidation, "invalid filename pattern", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, filenameData{
		Name:      name,
		Format:    string(format),
		Timestamp: now.UTC().Format("20060102T150405Z"),
		Date:      now.UTC().Format("20060102"),
	})
	if err != nil {
		return "", NewError(KindValidation, "invalid filename pattern", err)
	}

	result := sanitizeFilename(buf.String())
	if result == "" {
		return "", NewError(KindValidation, "empty filename", nil)
	}

	ext := string(format)
	if ext != "" && !strings.HasSuffix(strings.ToLower(result), "."+ext) {
		result = result + "." + ext
	}
	return result, nil
}

func sanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}
