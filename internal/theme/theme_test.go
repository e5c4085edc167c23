package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status string
		want   any
	}{
		{"Done", ColorGreen},
		{"Fixed", ColorGreen},
		{"In progress", ColorYellow},
		{"Not started", ColorBlue},
		{"Open", ColorBlue},
		{"In review", ColorMagenta},
		{"Blocked", ColorRed},
		{"", ColorGray},
		{"Parked", ColorGray},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusStyle(tt.status).GetForeground())
		})
	}
}

func TestPriorityStyle(t *testing.T) {
	assert.Equal(t, ColorRed, PriorityStyle("Critical").GetForeground())
	assert.Equal(t, ColorOrange, PriorityStyle("High").GetForeground())
	assert.Equal(t, ColorYellow, PriorityStyle("medium").GetForeground())
	assert.Equal(t, ColorBlue, PriorityStyle("Low").GetForeground())
	assert.Equal(t, ColorGray, PriorityStyle("").GetForeground())
}
