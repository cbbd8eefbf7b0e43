// Package train drives end-to-end training runs: it loads a symptom
// dataset, encodes it for the chosen variant, cross-validates a classifier
// and writes the scores plus the representative model to disk.
package train

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aimedlab/symdx/encoding"
	"github.com/aimedlab/symdx/pkg/errors"
)

// Dataset pairs the parsed patient records with their condition labels.
type Dataset struct {
	Records []encoding.Record
	Labels  []string
}

// symptomCell is the JSON shape of one symptom inside the SYMPTOMS column.
// Sub-attribute fields stay empty in basic exports.
type symptomCell struct {
	Name       string  `json:"name"`
	Nature     string  `json:"nature,omitempty"`
	Location   string  `json:"location,omitempty"`
	Intensity  string  `json:"intensity,omitempty"`
	Excitation string  `json:"excitation,omitempty"`
	Frequency  string  `json:"frequency,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	Onset      float64 `json:"onset,omitempty"`
}

// datasetColumns is the required CSV header.
var datasetColumns = []string{"GENDER", "RACE", "AGE", "SYMPTOMS", "LABEL"}

// LoadDataset reads a patient CSV. The SYMPTOMS cell holds a JSON array of
// symptom objects; an empty cell means no reported symptoms.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dataset %s", path)
	}
	defer f.Close()
	return ReadDataset(f)
}

// ReadDataset parses dataset CSV content from r.
func ReadDataset(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading dataset header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, name := range datasetColumns {
		if _, ok := col[name]; !ok {
			return nil, errors.NewValidationError("header", "missing required column", name)
		}
	}

	ds := &Dataset{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading dataset row %d", line)
		}
		line++

		age, err := strconv.ParseFloat(strings.TrimSpace(row[col["AGE"]]), 64)
		if err != nil {
			return nil, errors.NewEncodingError("AGE", row[col["AGE"]], "not a number")
		}

		symptoms, err := parseSymptoms(row[col["SYMPTOMS"]])
		if err != nil {
			return nil, errors.Wrapf(err, "dataset row %d", line)
		}

		ds.Records = append(ds.Records, encoding.Record{
			Gender:   strings.TrimSpace(row[col["GENDER"]]),
			Race:     strings.TrimSpace(row[col["RACE"]]),
			Age:      age,
			Symptoms: symptoms,
		})
		ds.Labels = append(ds.Labels, strings.TrimSpace(row[col["LABEL"]]))
	}
	if len(ds.Records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset")
	}
	return ds, nil
}

func parseSymptoms(cell string) ([]encoding.Symptom, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}

	var parsed []symptomCell
	if err := json.Unmarshal([]byte(cell), &parsed); err != nil {
		return nil, errors.NewEncodingError("SYMPTOMS", cell, "not a JSON symptom array")
	}

	symptoms := make([]encoding.Symptom, len(parsed))
	for i, s := range parsed {
		if s.Name == "" {
			return nil, errors.NewEncodingError("SYMPTOMS", cell, "symptom without a name")
		}
		symptoms[i] = encoding.Symptom{
			Name:       s.Name,
			Nature:     s.Nature,
			Location:   s.Location,
			Intensity:  s.Intensity,
			Excitation: s.Excitation,
			Frequency:  s.Frequency,
			Duration:   s.Duration,
			Onset:      s.Onset,
		}
	}
	return symptoms, nil
}
