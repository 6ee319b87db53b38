package documents

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *DiagnosticReport {
	size := int64(42)
	return &DiagnosticReport{
		FileName:      "notes.txt",
		UsingDefault:  true,
		Policy:        "default_only",
		EffectiveDir:  "/data/docshelf/documents",
		CandidatePath: "/data/docshelf/documents/notes.txt",
		Exists:        true,
		Size:          &size,
		ContentType:   "text/plain; charset=utf-8",
		Digest:        "blake2b-256:abcd",
	}
}

func TestReportString(t *testing.T) {
	out := sampleReport().String()

	assert.Contains(t, out, "Configured location: none (default)")
	assert.Contains(t, out, "Effective directory: /data/docshelf/documents")
	assert.Contains(t, out, "Candidate path: /data/docshelf/documents/notes.txt")
	assert.Contains(t, out, "Exists: true")
	assert.Contains(t, out, "Size: 42 bytes")
	assert.NotContains(t, out, "Read error")
}

func TestReportStringStopsAtFirstError(t *testing.T) {
	report := &DiagnosticReport{
		ConfiguredPath: "/custom",
		Policy:         "always",
		EffectiveDir:   "/custom",
		PathError:      "build_path: invalid file path",
	}

	out := report.String()
	assert.Contains(t, out, "Configured location: /custom")
	assert.Contains(t, out, "Candidate path: error: build_path: invalid file path")
	assert.NotContains(t, out, "Exists:")

	report = &DiagnosticReport{UsingDefault: true, DirectoryError: "mkdir failed"}
	out = report.String()
	assert.Contains(t, out, "Effective directory: error: mkdir failed")
	assert.NotContains(t, out, "Candidate path")
}

func TestReportFormats(t *testing.T) {
	report := sampleReport()

	t.Run("text", func(t *testing.T) {
		out, err := report.Format("")
		require.NoError(t, err)
		assert.Equal(t, report.String(), out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := report.Format("JSON")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, sonic.UnmarshalString(out, &decoded))
		assert.Equal(t, "notes.txt", decoded["file_name"])
		assert.Equal(t, "default_only", decoded["containment_policy"])
		assert.EqualValues(t, 42, decoded["size"])
		assert.NotContains(t, decoded, "configured_path")
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := report.Format(FormatYAML)
		require.NoError(t, err)

		var decoded DiagnosticReport
		require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, report.CandidatePath, decoded.CandidatePath)
		require.NotNil(t, decoded.Size)
		assert.Equal(t, int64(42), *decoded.Size)
	})

	t.Run("toml", func(t *testing.T) {
		out, err := report.Format(FormatTOML)
		require.NoError(t, err)

		var decoded DiagnosticReport
		require.NoError(t, toml.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, report.Digest, decoded.Digest)
		assert.True(t, decoded.Exists)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := report.Format("xml")
		assert.Error(t, err)
	})
}
