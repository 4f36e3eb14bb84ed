// Package bank reads exams and answer sheets from YAML files. JSON input is
// accepted too.
package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
)

var ErrEmptyBank = errors.New("bank has no questions")

// Load reads and parses the exam bank at path.
func Load(path string) (exam.Exam, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return exam.Exam{}, fmt.Errorf("read bank: %w", err)
	}
	e, err := Parse(data)
	if err != nil {
		return exam.Exam{}, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// Parse decodes a single exam document. Unknown fields are rejected.
func Parse(data []byte) (exam.Exam, error) {
	var e exam.Exam
	if err := decodeStrict(data, &e); err != nil {
		return exam.Exam{}, fmt.Errorf("parse bank: %w", err)
	}
	if len(e.Questions) == 0 {
		return exam.Exam{}, ErrEmptyBank
	}
	for i, rec := range e.Questions {
		if rec.Title == nil {
			return exam.Exam{}, fmt.Errorf("question %d: missing title", i)
		}
	}
	return e, nil
}

// LoadResponses reads an answer sheet: question id to saved input.
func LoadResponses(path string) (map[string]exam.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var resp map[string]exam.Response
	if err := decodeStrict(data, &resp); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	if resp == nil {
		resp = map[string]exam.Response{}
	}
	return resp, nil
}

func decodeStrict(data []byte, v any) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return err
		}
		if dec.More() {
			return errors.New("trailing data after JSON document")
		}
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("multiple YAML documents are not supported")
		}
		return err
	}
	return nil
}
