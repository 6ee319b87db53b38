package documents

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Report formats accepted by DiagnosticReport.Format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// DiagnosticReport is the result of Diagnose
type DiagnosticReport struct {
	FileName       string `json:"file_name" yaml:"file_name" toml:"file_name"`
	ConfiguredPath string `json:"configured_path,omitempty" yaml:"configured_path,omitempty" toml:"configured_path,omitempty"`
	UsingDefault   bool   `json:"using_default" yaml:"using_default" toml:"using_default"`
	Policy         string `json:"containment_policy" yaml:"containment_policy" toml:"containment_policy"`
	EffectiveDir   string `json:"effective_dir,omitempty" yaml:"effective_dir,omitempty" toml:"effective_dir,omitempty"`
	DirectoryError string `json:"directory_error,omitempty" yaml:"directory_error,omitempty" toml:"directory_error,omitempty"`
	CandidatePath  string `json:"candidate_path,omitempty" yaml:"candidate_path,omitempty" toml:"candidate_path,omitempty"`
	PathError      string `json:"path_error,omitempty" yaml:"path_error,omitempty" toml:"path_error,omitempty"`
	Exists         bool   `json:"exists" yaml:"exists" toml:"exists"`
	Size           *int64 `json:"size,omitempty" yaml:"size,omitempty" toml:"size,omitempty"`
	ReadError      string `json:"read_error,omitempty" yaml:"read_error,omitempty" toml:"read_error,omitempty"`
	ContentType    string `json:"content_type,omitempty" yaml:"content_type,omitempty" toml:"content_type,omitempty"`
	Charset        string `json:"charset,omitempty" yaml:"charset,omitempty" toml:"charset,omitempty"`
	Digest         string `json:"digest,omitempty" yaml:"digest,omitempty" toml:"digest,omitempty"`
}

// Readable reports whether the file exists and was read without error
func (r *DiagnosticReport) Readable() bool {
	return r.Exists && r.ReadError == "" && r.Size != nil
}

// Format renders the report. An empty format means text.
func (r *DiagnosticReport) Format(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return r.String(), nil
	case FormatJSON:
		data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report as json: %w", err)
		}
		return string(data), nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to encode report as yaml: %w", err)
		}
		return string(data), nil
	case FormatTOML:
		data, err := toml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to encode report as toml: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
}

// String renders the report as human-readable lines
func (r *DiagnosticReport) String() string {
	var sb strings.Builder

	if r.UsingDefault {
		sb.WriteString("Configured location: none (default)\n")
	} else {
		fmt.Fprintf(&sb, "Configured location: %s\n", r.ConfiguredPath)
	}
	fmt.Fprintf(&sb, "Containment policy: %s\n", r.Policy)

	if r.DirectoryError != "" {
		fmt.Fprintf(&sb, "Effective directory: error: %s\n", r.DirectoryError)
		return sb.String()
	}
	fmt.Fprintf(&sb, "Effective directory: %s\n", r.EffectiveDir)

	if r.PathError != "" {
		fmt.Fprintf(&sb, "Candidate path: error: %s\n", r.PathError)
		return sb.String()
	}
	fmt.Fprintf(&sb, "Candidate path: %s\n", r.CandidatePath)
	fmt.Fprintf(&sb, "Exists: %t\n", r.Exists)

	if r.ReadError != "" {
		fmt.Fprintf(&sb, "Read error: %s\n", r.ReadError)
	}
	if r.Size != nil {
		fmt.Fprintf(&sb, "Size: %d bytes\n", *r.Size)
	}
	if r.ContentType != "" {
		fmt.Fprintf(&sb, "Content type: %s\n", r.ContentType)
	}
	if r.Charset != "" {
		fmt.Fprintf(&sb, "Charset: %s\n", r.Charset)
	}
	if r.Digest != "" {
		fmt.Fprintf(&sb, "Digest: %s\n", r.Digest)
	}

	return sb.String()
}
