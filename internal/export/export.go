// Package export renders analysis results as downloadable files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sentiboard/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format in the order files are written.
var Formats = []Format{FormatJSON, FormatCSV, FormatPDF}

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (expected json, csv or pdf)", ErrUnknownFormat, s)
}

func (f Format) Filename() string {
	switch f {
	case FormatJSON:
		return "sentiment_analysis.json"
	case FormatCSV:
		return "sentiment_analysis.csv"
	case FormatPDF:
		return "sentiment_analysis_report.pdf"
	}
	return ""
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Artifact is one rendered export file.
type Artifact struct {
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders results in the given format. An empty result set yields
// domain.ErrNoResults and no artifact.
func Export(format Format, results []domain.AnalysisResult) (Artifact, error) {
	if len(results) == 0 {
		return Artifact{}, domain.ErrNoResults
	}
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = JSON(results)
	case FormatCSV:
		data = []byte(CSV(results))
	case FormatPDF:
		data, err = PDF(results)
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("rendering %s export: %w", format, err)
	}
	return Artifact{
		Format:      format,
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// WriteFiles renders every format into outputDir and returns the written paths.
func WriteFiles(outputDir string, results []domain.AnalysisResult) ([]string, error) {
	if len(results) == 0 {
		return nil, domain.ErrNoResults
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for _, f := range Formats {
		art, err := Export(f, results)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(outputDir, art.Filename)
		if err := os.WriteFile(path, art.Data, 0644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
