package candidates

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricesearch/term-eval/internal/gold"
	apperrors "github.com/ricesearch/term-eval/internal/pkg/errors"
	"github.com/ricesearch/term-eval/internal/pkg/logger"
)

func testGold() *gold.Index {
	return gold.Build([]gold.Record{
		{Source: "cat", Targets: []string{"chat", "félin"}},
		{Source: "dog", Targets: []string{"chien"}},
		{Source: "bird", Targets: []string{"oiseau"}},
	}, nil)
}

func TestIndex_Add(t *testing.T) {
	idx := NewIndex()
	idx.Add("cat", "chat", 0.9)
	idx.Add("cat", "dog", 0.8)
	idx.Add("dog", "chien", 0.1)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []Entry{{"chat", 0.9}, {"dog", 0.8}}, idx.Candidates("cat"))
	assert.Nil(t, idx.Candidates("bird"))
	assert.Equal(t, []string{"cat", "dog"}, idx.Sources())
}

func TestRead(t *testing.T) {
	input := strings.Join([]string{
		"cat\tchat\t0.9",
		"cat\tdog\t0.8",
		"dog\tchien\t1e-3",
		"cat\tfélin\t 0.5 ",
		"",
		"dog\tloup\t-2\textra",
	}, "\n")

	idx, stats, err := Read(strings.NewReader(input), testGold(), logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 5, Kept: 5, Skipped: 0}, stats)
	assert.Equal(t, []Entry{{"chat", 0.9}, {"dog", 0.8}, {"félin", 0.5}}, idx.Candidates("cat"))
	assert.Equal(t, []Entry{{"chien", 0.001}, {"loup", -2}}, idx.Candidates("dog"))
	assert.Equal(t, 2, idx.Len(), "bird has no candidates and must not appear")
}

func TestRead_QuotedSourceTerm(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn", "text")

	input := "\"big\" cat\tgros chat\t0.9\ncat\tchat\t0.8\ncat\tf\u00e9lin\t0.7\n"
	idx, stats, err := Read(strings.NewReader(input), testGold(), log)
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 3, Kept: 2, Skipped: 1}, stats)
	assert.Equal(t, []Entry{{Target: "chat", Score: 0.8}, {Target: "f\u00e9lin", Score: 0.7}}, idx.Candidates("cat"))
	assert.Contains(t, buf.String(), `source="big cat"`)
}

func TestRowReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rows  [][]string
		lines []int
	}{
		{
			name:  "plain rows",
			input: "a\tb\t1\r\n\nc\td\t2",
			rows:  [][]string{{"a", "b", "1"}, {"c", "d", "2"}},
			lines: []int{1, 3},
		},
		{
			name:  "quote closed mid field",
			input: "\"big\" cat\tx\t1\n",
			rows:  [][]string{{"big cat", "x", "1"}},
			lines: []int{1},
		},
		{
			name:  "quote inside unquoted field",
			input: "big \"cat\"\tx\t1\n",
			rows:  [][]string{{"big \"cat\"", "x", "1"}},
			lines: []int{1},
		},
		{
			name:  "tab and doubled quote inside quotes",
			input: "\"a\tb\"\t\"say \"\"hi\"\"\"\t1\n",
			rows:  [][]string{{"a\tb", "say \"hi\"", "1"}},
			lines: []int{1},
		},
		{
			name:  "quoted field spans lines",
			input: "\"two\nlines\"\tx\t1\nc\td\t2\n",
			rows:  [][]string{{"two\nlines", "x", "1"}, {"c", "d", "2"}},
			lines: []int{1, 3},
		},
		{
			name:  "unterminated quote at eof",
			input: "\"open\tx\t1\n",
			rows:  [][]string{{"open\tx\t1"}},
			lines: []int{1},
		},
		{
			name:  "empty fields",
			input: "\t\t\n",
			rows:  [][]string{{"", "", ""}},
			lines: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := newRowReader(strings.NewReader(tt.input))
			var rows [][]string
			var lines []int
			for {
				row, line, err := rr.Read()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				rows = append(rows, row)
				lines = append(lines, line)
			}
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.lines, lines)
		})
	}
}

func TestRead_SkipsTermsOutsideGold(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn", "text")

	input := "xyz\tabc\t0.7\ncat\tchat\t0.9\n"
	idx, stats, err := Read(strings.NewReader(input), testGold(), log)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, idx.Len())
	assert.Nil(t, idx.Candidates("xyz"))
	assert.Contains(t, buf.String(), "source term not found in the gold standard")
	assert.Contains(t, buf.String(), "source=xyz")
}

func TestRead_FatalRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"bad score", "cat\tchat\t0.9\ncat\tdog\thigh\n", "2"},
		{"empty score", "cat\tchat\t\n", "1"},
		{"nan score", "cat\tchat\tNaN\n", "1"},
		{"missing score", "cat\tchat\n", "1"},
		{"bad score outside gold", "xyz\tabc\toops\n", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.input), testGold(), logger.Discard())
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeParse, appErr.Code)
			assert.Equal(t, tt.line, appErr.Details["line"])
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.tsv")
	require.NoError(t, os.WriteFile(path, []byte("cat\tchat\t0.9\n"), 0644))

	idx, _, err := ReadFile(path, testGold(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	_, _, err = ReadFile(filepath.Join(dir, "missing.tsv"), testGold(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInput))
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.5", 0.5, false},
		{" 1.25\r", 1.25, false},
		{"-3", -3, false},
		{"2E2", 200, false},
		{"inf", math.Inf(1), false},
		{"1e400", math.Inf(1), false},
		{"-1e400", math.Inf(-1), false},
		{"1e-400", 0, false},
		{"1_000.5", 1000.5, false},
		{"0x1p-2", 0, true},
		{"-0X10", 0, true},
		{"1__0", 0, true},
		{"_1", 0, true},
		{"1_", 0, true},
		{"nan", 0, true},
		{"", 0, true},
		{"0,5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScore(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
