package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTime(t *testing.T) {
	valid := []string{"00:00", "0:00", "9:30", "09:30", "19:05", "23:59"}
	for _, v := range valid {
		assert.True(t, ValidTime(v), "expected %q to be valid", v)
	}

	invalid := []string{"24:00", "23:60", "7:5", "007:30", "12", "12:3", "12:345", "ab:cd", "", " 12:30"}
	for _, v := range invalid {
		assert.False(t, ValidTime(v), "expected %q to be invalid", v)
	}
}

func TestValidWeekday(t *testing.T) {
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		assert.True(t, ValidWeekday(day))
	}
	assert.False(t, ValidWeekday("monday"))
	assert.False(t, ValidWeekday("Funday"))
	assert.False(t, ValidWeekday(""))
}
