package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixture(t *testing.T) {
	task, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Secure Login Form with Authentication", task.Title)
	assert.Equal(t, "2 days", task.EstimatedTime)
	assert.Equal(t, 5, task.StepCount())
	assert.Len(t, task.SuggestedTests, 4)
	assert.Len(t, task.AcceptanceCriteria, 4)
	assert.Equal(t, "Create a form component using React", task.Steps[0])
	assert.Contains(t, task.Description, "real-time error feedback.")
	assert.NotContains(t, task.Description, "\n")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("title: x\npriority: high\n"))
	assert.Error(t, err)
}

func TestDecodeRequiresTitle(t *testing.T) {
	_, err := Decode([]byte("description: nothing else\n"))
	assert.Error(t, err)
}
