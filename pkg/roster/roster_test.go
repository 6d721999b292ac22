package roster

import (
	"strings"
	"testing"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const signupCSV = `Timestamp,Username,Name (First and Last),Gender,Are you OK to open?,Are you OK to close?,Monday,Tuesday,Wednesday,Preferred days
1/5/2025,jd1,Jane Doe,Female,No,Yes,"10:30 - 11:30, 1:30-2:30",12:30-1:30,,Tuesday
1/5/2025,jd2,John Doe,Male,Yes,No thanks,11:30-12:30,,"10:30-11:30, 11:30-12:30",
1/5/2025,x,,Female,Yes,Yes,11:30-12:30,,,
1/5/2025,jd3,Jane Doe,F,maybe,,Not available,,,
`

func TestParseCSV(t *testing.T) {
	r, warnings, err := Parse("signups.csv", strings.NewReader(signupCSV), nil)
	require.NoError(t, err)
	require.Len(t, r.Members, 3)
	assert.Equal(t, models.DefaultTimes, r.Times)

	jane := r.Members[0]
	assert.Equal(t, "jane-doe", jane.ID)
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, models.Female, jane.Gender)
	assert.Equal(t, models.Unwilling, jane.Opening)
	assert.Equal(t, models.Willing, jane.Closing)
	assert.Equal(t, map[models.Day][]int{
		models.Monday:  {0, 3},
		models.Tuesday: {2},
	}, jane.Availability)
	assert.Equal(t, []models.Day{models.Tuesday}, jane.PreferredDays)

	john := r.Members[1]
	assert.Equal(t, "john-doe", john.ID)
	assert.Equal(t, models.Male, john.Gender)
	assert.Equal(t, models.Willing, john.Opening)
	assert.Equal(t, models.Unwilling, john.Closing)
	assert.Equal(t, map[models.Day][]int{
		models.Monday:    {1},
		models.Wednesday: {0, 1},
	}, john.Availability)

	second := r.Members[2]
	assert.Equal(t, "jane-doe-2", second.ID)
	assert.Equal(t, models.Neutral, second.Opening)
	assert.Empty(t, second.Availability)

	require.Len(t, warnings, 2)
	assert.Equal(t, "skipped_row", warnings[0].Kind)
	assert.Contains(t, warnings[0].Message, "row 4")
	assert.Equal(t, "no_availability", warnings[1].Kind)
	assert.Equal(t, "jane-doe-2", warnings[1].MemberID)

	_, err = availability.NewStore(r)
	assert.NoError(t, err, "parsed rosters must build a store")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Gender", "OK to open", "OK to close", "Friday"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Sam Lee", "male", "yes", "", "1:30-2:30"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Ria Das", "Woman"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	r, warnings, err := Parse("Roster.XLSX", buf, nil)
	require.NoError(t, err)
	require.Len(t, r.Members, 2)
	assert.Equal(t, "sam-lee", r.Members[0].ID)
	assert.Equal(t, models.Male, r.Members[0].Gender)
	assert.Equal(t, map[models.Day][]int{models.Friday: {3}}, r.Members[0].Availability)
	assert.Equal(t, models.Female, r.Members[1].Gender)
	require.Len(t, warnings, 1)
	assert.Equal(t, "ria-das", warnings[0].MemberID)
}

func TestParseCustomLayout(t *testing.T) {
	times := []models.TimeSlot{
		{Index: 0, Label: "9am", Category: models.Opening},
		{Index: 1, Label: "5pm", Category: models.Closing},
	}
	csv := "name,gender,monday\nAl,M,9 am and 5 pm\n"
	r, _, err := Parse("a.csv", strings.NewReader(csv), times)
	require.NoError(t, err)
	assert.Equal(t, times, r.Times)
	assert.Equal(t, map[models.Day][]int{models.Monday: {0, 1}}, r.Members[0].Availability)
}

func TestParseRejects(t *testing.T) {
	var inputErr *models.InputError

	_, _, err := Parse("roster.pdf", strings.NewReader("x"), nil)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "extension", inputErr.Field)

	_, _, err = Parse("roster.csv", strings.NewReader("Username,Gender\nbob,M\n"), nil)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "header", inputErr.Record)

	_, _, err = Parse("roster.csv", strings.NewReader(""), nil)
	require.ErrorAs(t, err, &inputErr)

	_, _, err = Parse("roster.xlsx", strings.NewReader("not a zip"), nil)
	require.ErrorAs(t, err, &inputErr)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "o-brien-jr", slug("  O'Brien, Jr. "))
	assert.Equal(t, "", slug("!!!"))

	seen := make(map[string]bool)
	assert.Equal(t, "member", uniqueID(seen, ""))
	assert.Equal(t, "member-2", uniqueID(seen, ""))

	assert.Equal(t, models.Other, parseGender("prefer not to say"))
	assert.Equal(t, models.Unwilling, parsePreference("I'd rather not"))
	assert.Equal(t, []models.Day{models.Monday, models.Friday}, matchDays("friday or MONDAY"))
}
