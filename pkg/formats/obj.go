package formats

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/objmodel/pkg/math"
)

// OBJ format errors.
var (
	ErrMalformedNumber   = errors.New("malformed number")
	ErrMalformedVertex   = errors.New("malformed vertex")
	ErrMalformedTexCoord = errors.New("malformed texture coordinate")
	ErrMalformedFace     = errors.New("malformed face")
	ErrIndexOutOfRange   = errors.New("index out of range")

	errMissingTexCoord = errors.New("missing texture coordinate index")
	errBuilderClosed   = errors.New("obj builder already finished")
)

// OBJParseError carries the line that stopped an OBJ parse.
type OBJParseError struct {
	Line int    // 1-based
	Text string // raw line, without the line terminator
	Err  error
}

// Error implements the error interface.
func (e *OBJParseError) Error() string {
	return fmt.Sprintf("obj line %d %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error so errors.Is matches the sentinels.
func (e *OBJParseError) Unwrap() error {
	return e.Err
}

// OBJDirectiveKind identifies what a single OBJ line declares.
type OBJDirectiveKind uint8

// Directive kinds.
const (
	OBJIgnored           OBJDirectiveKind = iota // Comment, blank or unsupported keyword
	OBJVertexDirective                           // v x y z
	OBJTexCoordDirective                         // vt u v [w]
	OBJFaceDirective                             // f p/t[/n] ...
)

// String returns a human-readable directive kind name.
func (k OBJDirectiveKind) String() string {
	switch k {
	case OBJIgnored:
		return "Ignored"
	case OBJVertexDirective:
		return "Vertex"
	case OBJTexCoordDirective:
		return "TexCoord"
	case OBJFaceDirective:
		return "Face"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// OBJFaceRef is one face corner before index resolution.
// Indices are 1-based when positive and relative to the end of the
// list declared so far when negative.
type OBJFaceRef struct {
	Position  int
	TexCoord  int
	Normal    int // parsed but never resolved
	HasNormal bool
}

// OBJDirective is one parsed OBJ line.
type OBJDirective struct {
	Kind OBJDirectiveKind
	// Keyword is set for ignored directives such as "vn" or "usemtl".
	// It is empty for comments and blank lines.
	Keyword  string
	Position math.Vec3
	TexCoord math.Vec2
	Corners  []OBJFaceRef
}

// OBJVertex is a fully resolved model vertex.
type OBJVertex struct {
	P  math.Vec3
	UV math.Vec2
}

// OBJFace is the range of model vertices produced by one face directive.
type OBJFace struct {
	First int
	Count int
}

// OBJModel represents a parsed Wavefront OBJ file.
type OBJModel struct {
	// Vertices are stored in the order faces reference them.
	Vertices []OBJVertex
	Faces    []OBJFace

	PositionCount int // number of v lines
	TexCoordCount int // number of vt lines

	// Ignored counts unsupported directive lines by keyword.
	Ignored map[string]int
}

// ParseOBJ parses OBJ text into a model.
// Any error aborts the parse and is returned as *OBJParseError.
func ParseOBJ(text string) (*OBJModel, error) {
	b := newOBJBuilder()

	lineNum := 0
	for line := range strings.Lines(text) {
		lineNum++
		line = strings.TrimSuffix(line, "\n")

		d, err := ParseOBJLine(line)
		if err == nil {
			err = b.apply(d)
		}
		if err != nil {
			return nil, &OBJParseError{
				Line: lineNum,
				Text: strings.TrimSuffix(line, "\r"),
				Err:  err,
			}
		}
	}

	return b.finish()
}

// ParseOBJBytes parses OBJ data from raw bytes.
func ParseOBJBytes(data []byte) (*OBJModel, error) {
	return ParseOBJ(string(data))
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJBytes(data)
}

// ParseOBJLine parses a single line (without its newline) into a directive.
func ParseOBJLine(line string) (OBJDirective, error) {
	line = strings.TrimSuffix(line, "\r")

	// Everything after '#' is a comment, including whole-line comments.
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	fields := strings.FieldsFunc(line, isOBJSpace)
	if len(fields) == 0 {
		return OBJDirective{Kind: OBJIgnored}, nil
	}

	keyword, args := fields[0], fields[1:]
	switch keyword {
	case "v":
		p, err := parseOBJVertex(args)
		if err != nil {
			return OBJDirective{}, err
		}
		return OBJDirective{Kind: OBJVertexDirective, Position: p}, nil

	case "vt":
		uv, err := parseOBJTexCoord(args)
		if err != nil {
			return OBJDirective{}, err
		}
		return OBJDirective{Kind: OBJTexCoordDirective, TexCoord: uv}, nil

	case "f":
		corners, err := parseOBJFace(args)
		if err != nil {
			return OBJDirective{}, err
		}
		return OBJDirective{Kind: OBJFaceDirective, Corners: corners}, nil

	default:
		return OBJDirective{Kind: OBJIgnored, Keyword: keyword}, nil
	}
}

func isOBJSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func parseOBJVertex(args []string) (math.Vec3, error) {
	if len(args) != 3 {
		return math.Vec3{}, fmt.Errorf("%w: expected 3 coordinates, got %d", ErrMalformedVertex, len(args))
	}

	var c [3]float32
	for i, tok := range args {
		v, err := parseOBJScalarToken(tok)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: coordinate %d: %w", ErrMalformedVertex, i, err)
		}
		c[i] = v
	}

	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseOBJTexCoord accepts u, v and an optional depth w, which is dropped.
func parseOBJTexCoord(args []string) (math.Vec2, error) {
	if len(args) < 2 || len(args) > 3 {
		return math.Vec2{}, fmt.Errorf("%w: expected 2 or 3 coordinates, got %d", ErrMalformedTexCoord, len(args))
	}

	var c [3]float32
	for i, tok := range args {
		v, err := parseOBJScalarToken(tok)
		if err != nil {
			return math.Vec2{}, fmt.Errorf("%w: coordinate %d: %w", ErrMalformedTexCoord, i, err)
		}
		c[i] = v
	}

	return math.Vec2{X: c[0], Y: c[1]}, nil
}

func parseOBJFace(args []string) ([]OBJFaceRef, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w: expected at least 3 corners, got %d", ErrMalformedFace, len(args))
	}

	corners := make([]OBJFaceRef, len(args))
	for i, tok := range args {
		ref, err := parseOBJCorner(tok)
		if errors.Is(err, ErrIndexOutOfRange) {
			return nil, fmt.Errorf("corner %d %q: %w", i+1, tok, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: corner %d %q: %w", ErrMalformedFace, i+1, tok, err)
		}
		corners[i] = ref
	}

	return corners, nil
}

// parseOBJCorner parses "p/t" or "p/t/n". Position-only corners are
// rejected because there is no texture coordinate to assign.
func parseOBJCorner(tok string) (OBJFaceRef, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return OBJFaceRef{}, fmt.Errorf("expected at most 3 indices, got %d", len(parts))
	}
	if len(parts) < 2 || parts[1] == "" {
		return OBJFaceRef{}, errMissingTexCoord
	}

	var ref OBJFaceRef
	var err error

	if ref.Position, err = parseOBJIndex(parts[0]); err != nil {
		return OBJFaceRef{}, fmt.Errorf("position: %w", err)
	}
	if ref.TexCoord, err = parseOBJIndex(parts[1]); err != nil {
		return OBJFaceRef{}, fmt.Errorf("texture coordinate: %w", err)
	}
	if len(parts) == 3 {
		if ref.Normal, err = parseOBJIndex(parts[2]); err != nil {
			return OBJFaceRef{}, fmt.Errorf("normal: %w", err)
		}
		ref.HasNormal = true
	}

	return ref, nil
}

func parseOBJIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		// A well-formed integer too large for int can never be in range.
		return 0, fmt.Errorf("%w: %s", ErrIndexOutOfRange, s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return n, nil
}

// ParseOBJScalar parses a decimal floating-point number at the start of s:
// an optional sign, digits with an optional fraction, and an optional
// exponent. It returns the value and the unconsumed remainder of s.
// Leading whitespace is not skipped.
func ParseOBJScalar(s string) (float32, string, error) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, s, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}

	// The exponent is only consumed when it has at least one digit.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	v, err := strconv.ParseFloat(s[:i], 32)
	if err != nil {
		return 0, s, fmt.Errorf("%w: %q out of range", ErrMalformedNumber, s[:i])
	}

	return float32(v), s[i:], nil
}

// parseOBJScalarToken parses a whole whitespace-delimited token as a scalar.
func parseOBJScalarToken(tok string) (float32, error) {
	v, rest, err := ParseOBJScalar(tok)
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, tok)
	}
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ResolveOBJIndex converts a face index into an absolute 1-based index
// into a list that currently holds length elements.
func ResolveOBJIndex(index, length int) (int, error) {
	switch {
	case index > 0:
		if index > length {
			return 0, fmt.Errorf("%w: %d exceeds %d declared", ErrIndexOutOfRange, index, length)
		}
		return index, nil
	case index < 0:
		abs := length + index + 1
		if abs < 1 {
			return 0, fmt.Errorf("%w: relative %d with %d declared", ErrIndexOutOfRange, index, length)
		}
		return abs, nil
	default:
		return 0, fmt.Errorf("%w: index 0 is not valid", ErrIndexOutOfRange)
	}
}

type objBuilderState uint8

const (
	objAccumulating objBuilderState = iota
	objFinished
	objFailed
)

// objBuilder folds directives, in file order, into a model.
type objBuilder struct {
	state objBuilderState
	err   error

	positions []math.Vec3
	texCoords []math.Vec2
	model     *OBJModel
}

func newOBJBuilder() *objBuilder {
	return &objBuilder{
		model: &OBJModel{
			Vertices: make([]OBJVertex, 0),
			Ignored:  make(map[string]int),
		},
	}
}

func (b *objBuilder) apply(d OBJDirective) error {
	switch b.state {
	case objFailed:
		return b.err
	case objFinished:
		return errBuilderClosed
	}

	switch d.Kind {
	case OBJVertexDirective:
		b.positions = append(b.positions, d.Position)
	case OBJTexCoordDirective:
		b.texCoords = append(b.texCoords, d.TexCoord)
	case OBJFaceDirective:
		if err := b.addFace(d.Corners); err != nil {
			b.state = objFailed
			b.err = err
			return err
		}
	default:
		if d.Keyword != "" {
			b.model.Ignored[d.Keyword]++
		}
	}

	return nil
}

// addFace resolves every corner against the lists as they stand now.
// Nothing is appended unless all corners resolve.
func (b *objBuilder) addFace(corners []OBJFaceRef) error {
	resolved := make([]OBJVertex, len(corners))
	for i, c := range corners {
		p, err := ResolveOBJIndex(c.Position, len(b.positions))
		if err != nil {
			return fmt.Errorf("corner %d position: %w", i+1, err)
		}
		uv, err := ResolveOBJIndex(c.TexCoord, len(b.texCoords))
		if err != nil {
			return fmt.Errorf("corner %d texture coordinate: %w", i+1, err)
		}
		resolved[i] = OBJVertex{P: b.positions[p-1], UV: b.texCoords[uv-1]}
	}

	b.model.Faces = append(b.model.Faces, OBJFace{
		First: len(b.model.Vertices),
		Count: len(resolved),
	})
	b.model.Vertices = append(b.model.Vertices, resolved...)
	return nil
}

func (b *objBuilder) finish() (*OBJModel, error) {
	switch b.state {
	case objFailed:
		return nil, b.err
	case objFinished:
		return nil, errBuilderClosed
	}

	b.state = objFinished
	b.model.PositionCount = len(b.positions)
	b.model.TexCoordCount = len(b.texCoords)
	return b.model, nil
}

// Triangles fan-triangulates every face and returns indices into Vertices.
// A face with N corners yields N-2 triangles.
func (m *OBJModel) Triangles() []uint32 {
	count := 0
	for _, f := range m.Faces {
		count += (f.Count - 2) * 3
	}

	indices := make([]uint32, 0, count)
	for _, f := range m.Faces {
		first := uint32(f.First)
		for i := 1; i < f.Count-1; i++ {
			indices = append(indices, first, first+uint32(i), first+uint32(i+1))
		}
	}
	return indices
}

// Bounds returns the axis-aligned bounding box of all vertex positions.
// Returns zero vectors for an empty model.
func (m *OBJModel) Bounds() (lo, hi math.Vec3) {
	if len(m.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}
	}

	lo = m.Vertices[0].P
	hi = m.Vertices[0].P
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.P)
		hi = hi.Max(v.P)
	}

	return lo, hi
}

// IgnoredTotal returns the number of unsupported directive lines.
func (m *OBJModel) IgnoredTotal() int {
	total := 0
	for _, n := range m.Ignored {
		total += n
	}
	return total
}
