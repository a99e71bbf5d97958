package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxptrace/gxptrace/spec"
	"github.com/gxptrace/gxptrace/trace"
)

func sampleResult() *trace.BuildResult {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: {
			SpecType: spec.SpecTypeFunctional,
			Title:    "Functional",
			Version:  "1.0",
			Requirements: []spec.Requirement{
				{ID: "FS-001", Title: "Parse documents", SpecType: spec.SpecTypeFunctional},
				{ID: "FS-002", Title: "Report coverage", SpecType: spec.SpecTypeFunctional},
			},
		},
	}
	decls := []trace.TestDeclaration{
		{TestID: "test_parse", Title: "Parse documents test", RequirementIDs: []string{"FS-001"}},
	}
	outcomes := map[string]trace.ExecutionOutcome{"test_parse": trace.OutcomePassed}
	return trace.Build(decls, outcomes, specs)
}

func TestWriteMatrixCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixCSV(&buf, sampleResult().Rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{
		"Test Case ID",
		"Test Case Title",
		"Requirement ID",
		"Requirement Title",
		"Specification Type",
		"User Requirement ID",
		"Status",
	}, records[0])

	assert.Equal(t, []string{
		"test_parse",
		"Parse documents test",
		"FS-001",
		"Parse documents",
		"Functional",
		"",
		"PASSED",
	}, records[1])
}

func TestWriteMatrixCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestWriteMatrixJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixJSON(&buf, sampleResult(), "Sample Project"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	meta, ok := doc["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Traceability Matrix", meta["title"])
	assert.Equal(t, "Sample Project", meta["project"])
	assert.NotEmpty(t, meta["generated_date"])

	matrix, ok := doc["matrix"].([]any)
	require.True(t, ok)
	assert.Len(t, matrix, 1)
	require.Contains(t, doc, "coverage")
	require.Contains(t, doc, "summary")
}

func TestWriteMatrixMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixMarkdown(&buf, sampleResult(), "Sample Project"))

	out := buf.String()
	assert.Contains(t, out, "# Traceability Matrix")
	assert.Contains(t, out, "**Project:** Sample Project")
	assert.Contains(t, out, "| test_parse | Parse documents test | FS-001 | Parse documents | Functional |  | PASSED |")
	assert.Contains(t, out, "- **Total Requirements:** 2")
	assert.Contains(t, out, "- **Coverage Percentage:** 50.0%")
	assert.Contains(t, out, "- **Uncovered Requirements:** FS-002")
}

func TestGetFormatInfo(t *testing.T) {
	info, ok := GetFormatInfo(FormatCSV)
	require.True(t, ok)
	assert.Equal(t, ".csv", info.Extension)
	assert.Equal(t, "text/csv", info.MIMEType)

	_, ok = GetFormatInfo(Format("pdf"))
	assert.False(t, ok)
}

func TestWriteValidationJSON(t *testing.T) {
	meta := ValidationMetadata{
		QualificationType: spec.PhaseOQ,
		ProjectName:       "Sample Project",
		SoftwareVersion:   "1.2.3",
		Tester:            &Approval{Name: "A. Tester", Role: "Tester", Date: "2026-01-15"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteValidationJSON(&buf, meta, sampleResult(), []string{"one advisory finding"}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Operational Qualification", doc["qualification_phase"])

	m, ok := doc["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Sample Project", m["project_name"])

	findings, ok := doc["findings"].([]any)
	require.True(t, ok)
	assert.Len(t, findings, 1)
}

func TestWriteCoverageMarkdown(t *testing.T) {
	specs := map[spec.SpecType]*spec.Specification{
		spec.SpecTypeFunctional: {
			SpecType: spec.SpecTypeFunctional,
			Requirements: []spec.Requirement{
				{ID: "FS-001", Title: "Parse documents", SpecType: spec.SpecTypeFunctional},
				{ID: "FS-002", Title: "Report coverage", SpecType: spec.SpecTypeFunctional},
			},
		},
	}
	result := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, WriteCoverageMarkdown(&buf, specs, result))

	out := buf.String()
	assert.Contains(t, out, "# Requirement Coverage Report")
	assert.Contains(t, out, "## Requirements Without Test Coverage")
	assert.Contains(t, out, "| FS-002 | Report coverage | Functional |")
	assert.Contains(t, out, "## All Requirements")
	assert.Contains(t, out, "| FS-001 | Parse documents | 1 | PASSED |")
	assert.Contains(t, out, "| FS-002 | Report coverage | 0 | No Tests |")

	// FS-001 is covered so it stays out of the uncovered table.
	uncoveredSection := out[strings.Index(out, "Without Test Coverage"):strings.Index(out, "## All Requirements")]
	assert.NotContains(t, uncoveredSection, "FS-001")
}
