// Package roster turns an operator's signup sheet into normalized members.
//
// Sheets come from form exports, so headers are matched loosely: a column
// whose lowercased title contains "gender" is the gender column, one
// containing "ok" and "open" holds opening willingness, and so on.
// Availability cells are free text searched for the slot labels.
package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// column roles recognised in the header row
const (
	colName      = "name"
	colGender    = "gender"
	colOpen      = "pref_open"
	colClose     = "pref_close"
	colPreferred = "preferred"
)

// Parse reads a roster from a .csv, .xlsx or .xls file. Availability cells
// are matched against times, or the default daily layout when times is
// empty. Rows without a name are skipped and reported as warnings.
func Parse(filename string, r io.Reader, times []models.TimeSlot) (models.Roster, []models.Warning, error) {
	rows, err := readRows(filename, r)
	if err != nil {
		return models.Roster{}, nil, err
	}
	return FromRows(rows, times)
}

// FromRows builds a roster from a header row followed by data rows
func FromRows(rows [][]string, times []models.TimeSlot) (models.Roster, []models.Warning, error) {
	if len(times) == 0 {
		times = models.DefaultTimes
	}
	if len(rows) == 0 {
		return models.Roster{}, nil, models.NewInputError("file", "", "roster is empty")
	}

	cols := mapColumns(rows[0])
	if _, ok := cols[colName]; !ok {
		return models.Roster{}, nil, models.NewInputError("header", colName, "no name column in %q", strings.Join(rows[0], ", "))
	}

	out := models.Roster{Times: times}
	var warnings []models.Warning
	ids := make(map[string]bool)
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		name := cell(row, cols, colName)
		if name == "" || strings.EqualFold(name, "nan") {
			warnings = append(warnings, models.Warning{
				Kind:     "skipped_row",
				Severity: models.Soft,
				Message:  fmt.Sprintf("row %d has no name and was skipped", line),
			})
			continue
		}

		m := models.Member{
			ID:           uniqueID(ids, slug(name)),
			Name:         name,
			Gender:       parseGender(cell(row, cols, colGender)),
			Opening:      parsePreference(cell(row, cols, colOpen)),
			Closing:      parsePreference(cell(row, cols, colClose)),
			Availability: make(map[models.Day][]int),
		}
		for _, day := range models.AllDays {
			if idx := matchTimes(cell(row, cols, string(day)), times); len(idx) > 0 {
				m.Availability[day] = idx
			}
		}
		m.PreferredDays = matchDays(cell(row, cols, colPreferred))
		if len(m.Availability) == 0 {
			warnings = append(warnings, models.Warning{
				Kind:     "no_availability",
				Severity: models.Soft,
				MemberID: m.ID,
				Message:  fmt.Sprintf("%s (row %d) listed no recognisable time slots", name, line),
			})
		}
		out.Members = append(out.Members, m)
	}
	return out, warnings, nil
}

func readRows(filename string, r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, models.NewInputError(filename, "", "malformed csv: %v", err)
		}
		return rows, nil
	case ".xlsx":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, models.NewInputError(filename, "", "unreadable workbook: %v", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, models.NewInputError(filename, "", "no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, models.NewInputError(filename, sheetName, "unreadable worksheet: %v", err)
		}
		return rows, nil
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, models.NewInputError(filename, "", "unreadable workbook: %v", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, models.NewInputError(filename, "", "no worksheet found")
		}
		return workbook.ReadAllCells(100000), nil
	default:
		return nil, models.NewInputError(filename, "extension", "unsupported roster format %q", ext)
	}
}

// mapColumns assigns a role to each header. Later columns win, so a sheet
// with both "Username" and "Name (First and Last)" keeps the latter.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		c := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(c, "name (first and last)"):
			cols[colName] = i
		case strings.Contains(c, "name") && !strings.Contains(c, "user"):
			cols[colName] = i
		case strings.Contains(c, "gender"):
			cols[colGender] = i
		case strings.Contains(c, "ok") && strings.Contains(c, "open"):
			cols[colOpen] = i
		case strings.Contains(c, "ok") && strings.Contains(c, "clo"):
			cols[colClose] = i
		case strings.Contains(c, "prefer"):
			cols[colPreferred] = i
		default:
			for _, day := range models.AllDays {
				if strings.Contains(c, strings.ToLower(string(day))) {
					cols[string(day)] = i
					break
				}
			}
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, role string) string {
	i, ok := cols[role]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseGender(s string) models.Gender {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return models.Other
	case strings.HasPrefix(s, "f"), strings.HasPrefix(s, "w"):
		return models.Female
	case strings.HasPrefix(s, "m"):
		return models.Male
	default:
		return models.Other
	}
}

// parsePreference reads a willingness answer. Any "no" means unwilling.
func parsePreference(s string) models.Preference {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "no"):
		return models.Unwilling
	case strings.Contains(s, "yes"):
		return models.Willing
	default:
		return models.Neutral
	}
}

func matchTimes(text string, times []models.TimeSlot) []int {
	if text == "" {
		return nil
	}
	squashed := strings.ReplaceAll(text, " ", "")
	var idx []int
	for _, t := range times {
		if strings.Contains(squashed, strings.ReplaceAll(t.Label, " ", "")) {
			idx = append(idx, t.Index)
		}
	}
	return idx
}

func matchDays(text string) []models.Day {
	text = strings.ToLower(text)
	var out []models.Day
	for _, day := range models.AllDays {
		if strings.Contains(text, strings.ToLower(string(day))) {
			out = append(out, day)
		}
	}
	return out
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func uniqueID(seen map[string]bool, base string) string {
	if base == "" {
		base = "member"
	}
	id := base
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	seen[id] = true
	return id
}
