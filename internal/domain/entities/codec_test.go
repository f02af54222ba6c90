package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeList_KeepsIdentity(t *testing.T) {
	teacher := "Dr. Wu"
	courses := []Course{
		{Code: 7, Name: "Bio", Teacher: &teacher, Order: 0, Color: PaletteColor(0)},
		{Code: 3, Name: "Calc", Order: 1, Color: PaletteColor(1)},
	}

	blob, err := EncodeList(courses)
	require.NoError(t, err)

	got, failed, err := DecodeList[Course](blob)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, courses, got)

	purple, err := ParseHexColor("#9B59B6CC")
	require.NoError(t, err)
	hidden := []Assignment{
		{
			ID:          uuid.New(),
			Name:        "Lab 4: Enzymes",
			Due:         time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC),
			CourseID:    7,
			CourseName:  "Bio",
			CourseOrder: 2,
			URL:         "https://uni.instructure.com/courses/7/assignments/41",
			Color:       purple,
			Description: "<p>Bring goggles</p>",
		},
		{
			ID:          uuid.New(),
			Name:        "Problem set",
			Due:         time.Date(2024, 12, 31, 8, 0, 30, 0, time.UTC),
			CourseID:    3,
			CourseName:  "Calc",
			CourseOrder: 0,
			URL:         "https://uni.instructure.com/courses/3/assignments/9",
			Color:       PaletteColor(5),
		},
	}
	blob, err = EncodeList(hidden)
	require.NoError(t, err)

	gotHidden, failed, err := DecodeList[Assignment](blob)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, hidden, gotHidden, "every field survives the round trip")
}

func TestDecodeList_SkipsCorruptRecords(t *testing.T) {
	blob := []byte(`[{"code":1,"name":"Bio"},"garbage",null,{"code":"x"},{"code":2,"name":"Calc"}]`)

	got, failed, err := DecodeList[Course](blob)
	require.NoError(t, err)
	assert.Equal(t, 3, failed)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Code)
	assert.Equal(t, 2, got[1].Code)
}

func TestDecodeList_UnreadableArray(t *testing.T) {
	_, _, err := DecodeList[Course]([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestEncodeList_Empty(t *testing.T) {
	blob, err := EncodeList[Course](nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(blob))
}
