// Package export renders schedules for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet   = "Final Schedule"
	UnassignedSheet = "Unassigned"
	Unfilled        = "UNFILLED"
)

// WriteXLSX writes a workbook with the weekly grid, two rows per time slot,
// and a sheet listing the members left unassigned.
func WriteXLSX(w io.Writer, store *availability.Store, sched models.Schedule) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, row := range GridRows(store, sched) {
		if err := setRow(f, ScheduleSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(ScheduleSheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(ScheduleSheet, "A", "A", 14); err != nil {
		return err
	}
	if len(sched.Days) > 0 {
		last, err := excelize.ColumnNumberToName(len(sched.Days) + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(ScheduleSheet, "B", last, 20); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(UnassignedSheet); err != nil {
		return err
	}
	for i, row := range UnassignedRows(store, sched) {
		if err := setRow(f, UnassignedSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(UnassignedSheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(UnassignedSheet, "D", "D", 60); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteCSV writes one row per placed member
func WriteCSV(w io.Writer, store *availability.Store, sched models.Schedule) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"day", "time", "category", "member_id", "member_name", "locked"}); err != nil {
		return err
	}
	for _, a := range sched.Slots {
		for _, id := range a.Members {
			locked := "no"
			if sched.IsLocked(a.Slot, id) {
				locked = "yes"
			}
			err := writer.Write([]string{
				string(a.Slot.Day),
				timeLabel(store, a.Slot.Time),
				string(store.Category(a.Slot.Time)),
				id,
				memberName(store, id),
				locked,
			})
			if err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// GridRows lays the schedule out as the "Final Schedule" sheet: a header of
// Time plus the active days, then two rows per time slot.
func GridRows(store *availability.Store, sched models.Schedule) [][]string {
	header := []string{"Time"}
	for _, d := range sched.Days {
		header = append(header, string(d))
	}
	rows := [][]string{header}

	for t := range store.Times() {
		first := []string{timeLabel(store, t)}
		second := []string{""}
		for _, d := range sched.Days {
			k := models.SlotKey{Day: d, Time: t}
			p1, p2 := Unfilled, Unfilled
			occ := sched.Occupants(k)
			if len(occ) >= 1 {
				p1 = seat(store, sched, k, occ[0])
			}
			if len(occ) >= 2 {
				p2 = seat(store, sched, k, occ[1])
			}
			first = append(first, p1)
			second = append(second, p2)
		}
		rows = append(rows, first, second)
	}
	return rows
}

// UnassignedRows lists unplaced members, most available first
func UnassignedRows(store *availability.Store, sched models.Schedule) [][]string {
	list := append([]models.UnassignedMember(nil), sched.Unassigned...)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SlotsFree != list[j].SlotsFree {
			return list[i].SlotsFree > list[j].SlotsFree
		}
		return list[i].Name < list[j].Name
	})

	rows := [][]string{{"Name", "Gender", "Slots Free", "Availability", "No Open", "No Close"}}
	for _, u := range list {
		rows = append(rows, []string{
			u.Name,
			string(u.Gender),
			fmt.Sprint(u.SlotsFree),
			availabilityText(store, u.Availability),
			yesNo(u.Opening == models.Unwilling),
			yesNo(u.Closing == models.Unwilling),
		})
	}
	return rows
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cellName, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return f.SetSheetRow(sheet, cellName, &out)
}

func seat(store *availability.Store, sched models.Schedule, k models.SlotKey, id string) string {
	name := memberName(store, id)
	if sched.IsLocked(k, id) {
		return name + " (locked)"
	}
	return name
}

func memberName(store *availability.Store, id string) string {
	if m, ok := store.Member(id); ok {
		return m.Name
	}
	return id
}

func timeLabel(store *availability.Store, t int) string {
	times := store.Times()
	if t < 0 || t >= len(times) {
		return "?"
	}
	return times[t].Label
}

func availabilityText(store *availability.Store, avail map[models.Day][]int) string {
	var parts []string
	for _, d := range models.AllDays {
		idx := append([]int(nil), avail[d]...)
		if len(idx) == 0 {
			continue
		}
		sort.Ints(idx)
		labels := make([]string, len(idx))
		for i, t := range idx {
			labels[i] = timeLabel(store, t)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", d, strings.Join(labels, ", ")))
	}
	return strings.Join(parts, " | ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
