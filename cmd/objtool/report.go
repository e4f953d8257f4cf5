package main

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objmodel/pkg/formats"
)

// modelSummary is the info command output.
type modelSummary struct {
	File      string         `yaml:"file"`
	Vertices  int            `yaml:"vertices"`
	Faces     int            `yaml:"faces"`
	Triangles int            `yaml:"triangles"`
	Positions int            `yaml:"positions"`
	TexCoords int            `yaml:"texcoords"`
	UVOutside int            `yaml:"uv_outside_unit_range"`
	BoundsMin [3]float32     `yaml:"bounds_min,flow"`
	BoundsMax [3]float32     `yaml:"bounds_max,flow"`
	Diagonal  float32        `yaml:"diagonal"`
	Ignored   map[string]int `yaml:"ignored,omitempty"`
}

func summarize(file string, model *formats.OBJModel) modelSummary {
	lo, hi := model.Bounds()

	uvOutside := 0
	for _, v := range model.Vertices {
		if !v.UV.InUnitRange() {
			uvOutside++
		}
	}

	s := modelSummary{
		File:      file,
		Vertices:  len(model.Vertices),
		Faces:     len(model.Faces),
		Triangles: len(model.Triangles()) / 3,
		Positions: model.PositionCount,
		TexCoords: model.TexCoordCount,
		UVOutside: uvOutside,
		BoundsMin: [3]float32{lo.X, lo.Y, lo.Z},
		BoundsMax: [3]float32{hi.X, hi.Y, hi.Z},
		Diagonal:  hi.Sub(lo).Length(),
	}
	if len(model.Ignored) > 0 {
		s.Ignored = model.Ignored
	}
	return s
}

func writeInfoText(w io.Writer, s modelSummary, precision int) {
	fmt.Fprintf(w, "File:       %s\n", s.File)
	fmt.Fprintf(w, "Vertices:   %d\n", s.Vertices)
	fmt.Fprintf(w, "Faces:      %d\n", s.Faces)
	fmt.Fprintf(w, "Triangles:  %d\n", s.Triangles)
	fmt.Fprintf(w, "Positions:  %d\n", s.Positions)
	fmt.Fprintf(w, "TexCoords:  %d\n", s.TexCoords)
	if s.UVOutside > 0 {
		fmt.Fprintf(w, "UV outside [0,1]: %d\n", s.UVOutside)
	}
	fmt.Fprintf(w, "Bounds min: (%.*f, %.*f, %.*f)\n",
		precision, s.BoundsMin[0], precision, s.BoundsMin[1], precision, s.BoundsMin[2])
	fmt.Fprintf(w, "Bounds max: (%.*f, %.*f, %.*f)\n",
		precision, s.BoundsMax[0], precision, s.BoundsMax[1], precision, s.BoundsMax[2])
	fmt.Fprintf(w, "Diagonal:   %.*f\n", precision, s.Diagonal)

	if len(s.Ignored) == 0 {
		return
	}

	// Sort by count, then keyword
	type kwStat struct {
		keyword string
		count   int
	}
	var stats []kwStat
	for kw, n := range s.Ignored {
		stats = append(stats, kwStat{kw, n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].keyword < stats[j].keyword
	})

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ignored directives:")
	for _, st := range stats {
		fmt.Fprintf(w, "  %-10s %d\n", st.keyword, st.count)
	}
}

// vertexRecord is one dump entry.
type vertexRecord struct {
	P  [3]float32 `yaml:"p,flow"`
	UV [2]float32 `yaml:"uv,flow"`
}

func vertexRecords(model *formats.OBJModel) []vertexRecord {
	records := make([]vertexRecord, len(model.Vertices))
	for i, v := range model.Vertices {
		records[i] = vertexRecord{
			P:  [3]float32{v.P.X, v.P.Y, v.P.Z},
			UV: [2]float32{v.UV.X, v.UV.Y},
		}
	}
	return records
}

func writeDumpText(w io.Writer, model *formats.OBJModel, precision int) {
	for i, v := range model.Vertices {
		fmt.Fprintf(w, "%d\tp=(%.*f, %.*f, %.*f)\tuv=(%.*f, %.*f)\n", i,
			precision, v.P.X, precision, v.P.Y, precision, v.P.Z,
			precision, v.UV.X, precision, v.UV.Y)
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// validationResult is the outcome of parsing one file.
type validationResult struct {
	File     string
	Vertices int
	Err      error
}

func newValidationResult(file string, model *formats.OBJModel, err error) validationResult {
	r := validationResult{File: file, Err: err}
	if model != nil {
		r.Vertices = len(model.Vertices)
	}
	return r
}

// writeValidation prints one line per result and returns the failure count.
func writeValidation(w io.Writer, results []validationResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", r.File, r.Err)
			failed++
			continue
		}
		fmt.Fprintf(w, "OK   %s (%d vertices)\n", r.File, r.Vertices)
	}
	return failed
}
