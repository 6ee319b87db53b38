package documents

import (
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// sniffLen is how much of a file is kept for content type detection
const sniffLen = 3072

// Save writes data to fileName in the effective directory, replacing any
// existing file, and returns the absolute path written
func (m *Manager) Save(fileName string, data []byte) (path string, err error) {
	defer m.track("save", time.Now(), &err)

	path, err = m.resolver.BuildPath(fileName)
	if err != nil {
		m.logger.Warn("Rejected save", zap.String("file_name", fileName), zap.Error(err))
		return "", err
	}

	if err = os.WriteFile(path, data, 0o644); err != nil {
		err = newError("save", path, ErrIOWrite, err)
		m.logger.Error("Failed to write document", zap.String("path", path), zap.Error(err))
		return "", err
	}

	m.metrics.AddBytesWritten(len(data))
	m.logger.Debug("Saved document", zap.String("path", path), zap.Int("size", len(data)))
	return path, nil
}

// Locate returns the path of an existing file. Only existence is checked,
// not readability.
func (m *Manager) Locate(fileName string) (path string, err error) {
	defer m.track("locate", time.Now(), &err)

	path, err = m.resolver.BuildPath(fileName)
	if err != nil {
		return "", err
	}

	if _, err = os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", newError("locate", path, ErrNotFound, nil)
		}
		return "", newError("locate", path, ErrIORead, err)
	}
	return path, nil
}

// Diagnose inspects fileName and reports what it finds. It never fails;
// every problem becomes a field of the report.
func (m *Manager) Diagnose(fileName string) *DiagnosticReport {
	start := time.Now()
	defer func() {
		m.metrics.ObserveOperation("diagnose", "ok", time.Since(start))
	}()

	report := &DiagnosticReport{
		FileName: fileName,
		Policy:   m.resolver.policy.String(),
	}
	if location, ok := m.store.Get(); ok {
		report.ConfiguredPath = location
	} else {
		report.UsingDefault = true
	}

	t, err := m.resolver.build(fileName)
	report.EffectiveDir = t.dir
	if err != nil {
		if errors.Is(err, ErrDirectoryCreate) {
			report.DirectoryError = err.Error()
		} else {
			report.PathError = err.Error()
		}
		return report
	}
	report.CandidatePath = t.path

	if _, err := os.Stat(t.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			report.ReadError = err.Error()
		}
		return report
	}
	report.Exists = true

	probe(t.path, report)
	return report
}

// probe reads the whole file once, hashing it and keeping the head for
// content detection
func probe(path string, report *DiagnosticReport) {
	f, err := os.Open(path)
	if err != nil {
		report.ReadError = err.Error()
		return
	}
	defer f.Close()

	hash, err := blake2b.New256(nil)
	if err != nil {
		report.ReadError = err.Error()
		return
	}
	head := &headWriter{max: sniffLen}

	n, err := io.Copy(io.MultiWriter(hash, head), f)
	if err != nil {
		report.ReadError = err.Error()
		return
	}

	report.Size = &n
	report.Digest = "blake2b-256:" + hex.EncodeToString(hash.Sum(nil))

	mt := mimetype.Detect(head.buf)
	report.ContentType = mt.String()
	if len(head.buf) > 0 && strings.HasPrefix(mt.String(), "text/") {
		report.Charset = detectCharset(head.buf)
	}
}

func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}

// headWriter keeps the first max bytes written to it and discards the rest
type headWriter struct {
	buf []byte
	max int
}

func (w *headWriter) Write(p []byte) (int, error) {
	if room := w.max - len(w.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		w.buf = append(w.buf, p[:room]...)
	}
	return len(p), nil
}
