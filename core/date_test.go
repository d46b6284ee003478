package core_test

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

func Test_DateOf_DropsTimeOfDay(t *testing.T) {
	// arrange
	evening := time.Date(2025, time.March, 3, 23, 59, 0, 0, time.UTC)

	// act
	d := core.DateOf(evening)

	// assert
	assert.Equal(t, "2025-03-03", d.String())
	assert.True(t, d.Equal(core.NewDate(2025, time.March, 3)))
}

func Test_Date_DaysSince(t *testing.T) {
	from := core.MustParseDate("2025-02-26")
	to := core.MustParseDate("2025-03-02")

	assert.Equal(t, 4, to.DaysSince(from))
	assert.Equal(t, -4, from.DaysSince(to))
	assert.Equal(t, 0, to.DaysSince(to))
}

func Test_ParseDate_RejectsGarbage(t *testing.T) {
	_, err := core.ParseDate("03/02/2025")

	assert.ErrorIs(t, err, core.ErrInvalidDateFormat)
}

func Test_Date_JSON(t *testing.T) {
	// arrange
	type payload struct {
		Due core.Date `json:"due"`
	}
	in := payload{Due: core.MustParseDate("2025-07-14")}

	// act
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(in)
	require.NoError(t, err)

	var out payload
	err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &out)

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-07-14"}`, string(data))
	assert.True(t, out.Due.Equal(in.Due))
}
