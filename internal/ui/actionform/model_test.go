package actionform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/bugtriage/internal/model"
)

func TestValidateRequired(t *testing.T) {
	v := validateRequired("Status")
	assert.EqualError(t, v("  "), "Status is required")
	assert.NoError(t, v("Done"))
}

func TestHandleSubmit(t *testing.T) {
	issue := model.Issue{ID: "p1", Title: "Crash"}

	m := New(80, 24)
	m.StartStatus(issue, []string{"Open", "Done"})
	m.fb.status = " Done "
	msg := m.handleSubmit()()
	require.IsType(t, StatusSubmittedMsg{}, msg)
	assert.Equal(t, StatusSubmittedMsg{Issue: issue, Status: "Done"}, msg)

	m.StartComment(issue)
	m.fb.comment = "repro on staging\n"
	msg = m.handleSubmit()()
	assert.Equal(t, CommentSubmittedMsg{Issue: issue, Text: "repro on staging"}, msg)
}

func TestStartStatusSeedsCurrentValue(t *testing.T) {
	status := "In progress"
	m := New(80, 24)
	m.StartStatus(model.Issue{ID: "p1", Title: "Crash", Status: &status}, nil)
	assert.Equal(t, "In progress", m.fb.status)
	assert.Contains(t, m.View(), "Set status")
}
