package parser

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/ludo-technologies/pygrade/internal/analyzer"
)

// ComplexityOutputs holds the JSON outputs of the four metrics sub-commands.
// A nil or empty output means the sub-command was not run.
type ComplexityOutputs struct {
	Raw      []byte // raw size counts
	CC       []byte // cyclomatic complexity blocks
	Halstead []byte // Halstead metrics, per file and per function
	MI       []byte // maintainability index
}

type rawEntry struct {
	LOC            int    `json:"loc"`
	LLOC           int    `json:"lloc"`
	SLOC           int    `json:"sloc"`
	Comments       int    `json:"comments"`
	Multi          int    `json:"multi"`
	Blank          int    `json:"blank"`
	SingleComments int    `json:"single_comments"`
	Error          string `json:"error"`
}

type ccBlock struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	ClassName  string `json:"classname"`
	LineNo     int    `json:"lineno"`
	EndLine    int    `json:"endline"`
	Complexity int    `json:"complexity"`
	Rank       string `json:"rank"`
}

type miEntry struct {
	MI    *float64 `json:"mi"`
	Rank  string   `json:"rank"`
	Error string   `json:"error"`
}

// fileAccumulator gathers one file's metrics across sub-command outputs
type fileAccumulator struct {
	metrics     domain.FileMetrics
	hasRaw      bool
	mi          *float64
	miRank      string
	fnHalstead  []namedHalstead
	errMessages []string
}

type namedHalstead struct {
	name string
	h    *domain.HalsteadMetrics
}

// ParseComplexity merges the metrics tool's JSON outputs into per-file metrics.
// Files are sorted by root-relative path. A ParseError is returned only when
// every supplied output is invalid JSON.
func ParseComplexity(out ComplexityOutputs, root string) (*domain.ComplexityResult, error) {
	files := make(map[string]*fileAccumulator)
	get := func(p string) *fileAccumulator {
		rel := RelativePath(root, p)
		acc, ok := files[rel]
		if !ok {
			acc = &fileAccumulator{metrics: domain.FileMetrics{File: rel, Functions: []domain.FunctionMetrics{}}}
			files[rel] = acc
		}
		return acc
	}

	supplied, valid := 0, 0
	var lastErr error
	decode := func(data []byte, apply func(map[string]json.RawMessage)) {
		if len(strings.TrimSpace(string(data))) == 0 {
			return
		}
		supplied++
		var byFile map[string]json.RawMessage
		if err := json.Unmarshal(data, &byFile); err != nil {
			lastErr = err
			return
		}
		valid++
		apply(byFile)
	}

	decode(out.Raw, func(byFile map[string]json.RawMessage) {
		for p, raw := range byFile {
			var e rawEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				continue
			}
			acc := get(p)
			if e.Error != "" {
				acc.errMessages = append(acc.errMessages, e.Error)
				continue
			}
			acc.hasRaw = true
			acc.metrics.Raw = domain.RawMetrics{
				LOC: e.LOC, LLOC: e.LLOC, SLOC: e.SLOC, Comments: e.Comments,
				Multi: e.Multi, Blank: e.Blank, SingleComments: e.SingleComments,
			}
		}
	})

	decode(out.CC, func(byFile map[string]json.RawMessage) {
		for p, raw := range byFile {
			acc := get(p)
			var blocks []ccBlock
			if err := json.Unmarshal(raw, &blocks); err != nil {
				var e struct {
					Error string `json:"error"`
				}
				if json.Unmarshal(raw, &e) == nil && e.Error != "" {
					acc.errMessages = append(acc.errMessages, e.Error)
				}
				continue
			}
			for _, b := range blocks {
				if b.Type != "function" && b.Type != "method" {
					continue
				}
				acc.metrics.Functions = append(acc.metrics.Functions, functionFromBlock(b))
			}
		}
	})

	decode(out.Halstead, func(byFile map[string]json.RawMessage) {
		for p, raw := range byFile {
			total, functions, errMsg, ok := decodeHalsteadFile(raw)
			if !ok {
				continue
			}
			acc := get(p)
			if errMsg != "" {
				acc.errMessages = append(acc.errMessages, errMsg)
				continue
			}
			acc.metrics.Halstead = total
			acc.fnHalstead = functions
		}
	})

	decode(out.MI, func(byFile map[string]json.RawMessage) {
		for p, raw := range byFile {
			var e miEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				continue
			}
			acc := get(p)
			if e.Error != "" {
				acc.errMessages = append(acc.errMessages, e.Error)
				continue
			}
			acc.mi, acc.miRank = e.MI, e.Rank
		}
	})

	if supplied > 0 && valid == 0 {
		return nil, domain.NewParseError(domain.ToolComplexity, lastErr)
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := &domain.ComplexityResult{Files: make([]domain.FileMetrics, 0, len(paths))}
	for _, p := range paths {
		result.Files = append(result.Files, files[p].finish())
	}
	return result, nil
}

func functionFromBlock(b ccBlock) domain.FunctionMetrics {
	fn := domain.FunctionMetrics{
		Name:       b.Name,
		FullName:   b.Name,
		ClassName:  b.ClassName,
		IsMethod:   b.Type == "method" || b.ClassName != "",
		StartLine:  b.LineNo,
		EndLine:    b.EndLine,
		Complexity: b.Complexity,
		Rank:       domain.ComplexityRank(strings.ToUpper(b.Rank)),
	}
	if b.ClassName != "" {
		fn.FullName = b.ClassName + "." + b.Name
	}
	if fn.Rank == "" {
		fn.Rank = analyzer.RankForComplexity(b.Complexity)
	}
	return fn
}

func (a *fileAccumulator) finish() domain.FileMetrics {
	m := a.metrics
	sort.SliceStable(m.Functions, func(i, j int) bool {
		return m.Functions[i].StartLine < m.Functions[j].StartLine
	})

	// attach per-function Halstead data by name, first unmatched wins
	used := make([]bool, len(a.fnHalstead))
	for i := range m.Functions {
		for j, nh := range a.fnHalstead {
			if used[j] || nh.name != m.Functions[i].Name {
				continue
			}
			m.Functions[i].Halstead = nh.h
			used[j] = true
			break
		}
	}

	for _, fn := range m.Functions {
		m.TotalComplexity += fn.Complexity
	}
	m.Rank = analyzer.FileRank(m.Functions)

	switch {
	case a.mi != nil:
		m.MaintainabilityIndex = *a.mi
	case a.hasRaw:
		volume := 0.0
		if m.Halstead != nil {
			volume = m.Halstead.Volume
		}
		m.MaintainabilityIndex = analyzer.MaintainabilityIndex(volume, m.TotalComplexity, m.Raw.SLOC, m.Raw.CommentRatio())
	default:
		m.MaintainabilityIndex = 100
	}
	m.MaintainabilityIndex = analyzer.RoundTo(m.MaintainabilityIndex, 2)
	m.MaintainabilityRank = strings.ToUpper(a.miRank)
	if m.MaintainabilityRank == "" {
		m.MaintainabilityRank = analyzer.MaintainabilityRank(m.MaintainabilityIndex)
	}
	if len(a.errMessages) > 0 {
		m.Error = strings.Join(a.errMessages, "; ")
	}
	return m
}

// decodeHalsteadFile accepts both the object form
// {"total": {...}, "functions": {"name": {...}}} and the list form
// {"total": [12 values], "functions": [["name", [12 values]]]}.
func decodeHalsteadFile(raw json.RawMessage) (total *domain.HalsteadMetrics, functions []namedHalstead, errMsg string, ok bool) {
	var entry struct {
		Total     json.RawMessage `json:"total"`
		Functions json.RawMessage `json:"functions"`
		Error     string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil, "", false
	}
	if entry.Error != "" {
		return nil, nil, entry.Error, true
	}

	if len(entry.Total) > 0 {
		if h, err := decodeHalstead(entry.Total); err == nil {
			total = h
		}
	}

	if len(entry.Functions) == 0 {
		return total, nil, "", true
	}

	// object form keeps key order only through a token walk
	if fns, err := decodeHalsteadObject(entry.Functions); err == nil {
		return total, fns, "", true
	}

	var list []json.RawMessage
	if err := json.Unmarshal(entry.Functions, &list); err == nil {
		for _, item := range list {
			var pair []json.RawMessage
			if json.Unmarshal(item, &pair) != nil || len(pair) != 2 {
				continue
			}
			var name string
			if json.Unmarshal(pair[0], &name) != nil {
				continue
			}
			if h, err := decodeHalstead(pair[1]); err == nil {
				functions = append(functions, namedHalstead{name: name, h: h})
			}
		}
	}
	return total, functions, "", true
}

func decodeHalsteadObject(raw json.RawMessage) ([]namedHalstead, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}
	var out []namedHalstead
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if h, err := decodeHalstead(value); err == nil {
			out = append(out, namedHalstead{name: name, h: h})
		}
	}
	return out, nil
}

// decodeHalstead accepts an object with named fields or a 12-element list
// ordered h1, h2, N1, N2, vocabulary, length, calculated_length, volume,
// difficulty, effort, time, bugs.
func decodeHalstead(raw json.RawMessage) (*domain.HalsteadMetrics, error) {
	var values []float64
	if err := json.Unmarshal(raw, &values); err == nil {
		if len(values) != 12 {
			return nil, errors.New("halstead list must have 12 values")
		}
		return &domain.HalsteadMetrics{
			H1: int(values[0]), H2: int(values[1]), N1: int(values[2]), N2: int(values[3]),
			Vocabulary: int(values[4]), Length: int(values[5]), CalculatedLength: values[6],
			Volume: values[7], Difficulty: values[8], Effort: values[9], Time: values[10], Bugs: values[11],
		}, nil
	}

	var obj struct {
		H1               float64 `json:"h1"`
		H2               float64 `json:"h2"`
		N1               float64 `json:"N1"`
		N2               float64 `json:"N2"`
		Vocabulary       float64 `json:"vocabulary"`
		Length           float64 `json:"length"`
		CalculatedLength float64 `json:"calculated_length"`
		Volume           float64 `json:"volume"`
		Difficulty       float64 `json:"difficulty"`
		Effort           float64 `json:"effort"`
		Time             float64 `json:"time"`
		Bugs             float64 `json:"bugs"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return &domain.HalsteadMetrics{
		H1: int(obj.H1), H2: int(obj.H2), N1: int(obj.N1), N2: int(obj.N2),
		Vocabulary: int(obj.Vocabulary), Length: int(obj.Length), CalculatedLength: obj.CalculatedLength,
		Volume: obj.Volume, Difficulty: obj.Difficulty, Effort: obj.Effort, Time: obj.Time, Bugs: obj.Bugs,
	}, nil
}
