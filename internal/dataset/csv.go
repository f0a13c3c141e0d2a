package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// Header is the column layout of the historical dataset file.
var Header = []string{"Month", "Temperature", "Humidity", "Rainfall", "Dengue_Cases", "Risk_Level"}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, samples []domain.TrainingSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range samples {
		s := &samples[i]
		row := []string{
			strconv.Itoa(s.Month),
			formatFloat(s.Temperature),
			formatFloat(s.Humidity),
			formatFloat(s.Rainfall),
			strconv.Itoa(s.DengueCases),
			string(s.RiskLevel),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes samples to path, creating parent directories.
func WriteCSVFile(path string, samples []domain.TrainingSample) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses a dataset written by WriteCSV. Columns are matched by header
// name, so column order may differ.
func ReadCSV(r io.Reader) ([]domain.TrainingSample, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}
	for _, h := range Header {
		if _, ok := colIdx[h]; !ok {
			return nil, fmt.Errorf("missing column %q", h)
		}
	}

	samples := make([]domain.TrainingSample, 0, len(rows)-1)
	for n, row := range rows[1:] {
		s, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+1, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// ReadCSVFile reads a dataset from path.
func ReadCSVFile(path string) ([]domain.TrainingSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseRow(row []string, idx map[string]int) (domain.TrainingSample, error) {
	var s domain.TrainingSample
	var err error

	if s.Month, err = strconv.Atoi(row[idx["Month"]]); err != nil {
		return s, fmt.Errorf("month: %w", err)
	}
	if s.Temperature, err = strconv.ParseFloat(row[idx["Temperature"]], 64); err != nil {
		return s, fmt.Errorf("temperature: %w", err)
	}
	if s.Humidity, err = strconv.ParseFloat(row[idx["Humidity"]], 64); err != nil {
		return s, fmt.Errorf("humidity: %w", err)
	}
	if s.Rainfall, err = strconv.ParseFloat(row[idx["Rainfall"]], 64); err != nil {
		return s, fmt.Errorf("rainfall: %w", err)
	}
	if s.DengueCases, err = strconv.Atoi(row[idx["Dengue_Cases"]]); err != nil {
		return s, fmt.Errorf("dengue cases: %w", err)
	}
	if s.RiskLevel, err = domain.ParseRiskLevel(row[idx["Risk_Level"]]); err != nil {
		return s, err
	}
	return s, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
