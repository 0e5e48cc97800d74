package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Assessment", "Type", "Score"},
		Rows: []map[string]string{
			{"Assessment": "Midterm exam", "Type": "Exam", "Score": "88"},
			{"Assessment": "Fractions worksheet", "Type": "Assignment"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Assessment,Type,Score\nMidterm exam,Exam,88\nFractions worksheet,Assignment,\n", string(payload))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}
