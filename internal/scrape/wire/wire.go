// Package wire checks provider JSON payloads against embedded JSON Schemas
// before they are decoded.
package wire

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Shape names one expected payload layout.
type Shape string

const (
	GreenhouseList Shape = "greenhouse_list"
	GreenhouseJob  Shape = "greenhouse_job"
	LeverPostings  Shape = "lever_postings"
)

var shapes = []Shape{GreenhouseList, GreenhouseJob, LeverPostings}

// ErrSyntax marks a body that is not JSON at all.
var ErrSyntax = errors.New("malformed json")

// ShapeError reports well-formed JSON that does not have the expected layout.
type ShapeError struct {
	Shape    Shape
	Problems []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: unexpected shape: %s", e.Shape, strings.Join(e.Problems, "; "))
}

// IsShapeError reports whether err is (or wraps) a *ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

var (
	loadOnce sync.Once
	compiled map[Shape]*gojsonschema.Schema
	loadErr  error
)

func load() {
	compiled = make(map[Shape]*gojsonschema.Schema, len(shapes))
	for _, s := range shapes {
		raw, err := schemaFS.ReadFile("schemas/" + string(s) + ".json")
		if err != nil {
			loadErr = fmt.Errorf("read schema %s: %w", s, err)
			return
		}
		sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			loadErr = fmt.Errorf("compile schema %s: %w", s, err)
			return
		}
		compiled[s] = sch
	}
}

// Validate checks body against shape. It returns an error wrapping ErrSyntax
// for unparsable bodies and a *ShapeError for parsable ones of the wrong
// layout.
func Validate(shape Shape, body []byte) error {
	loadOnce.Do(load)
	if loadErr != nil {
		return loadErr
	}
	sch, ok := compiled[shape]
	if !ok {
		return fmt.Errorf("unknown shape %q", shape)
	}

	res, err := sch.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%s: %w: %v", shape, ErrSyntax, err)
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return &ShapeError{Shape: shape, Problems: problems}
}
