package transfer

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        string
		want        Format
		wantErr     bool
	}{
		{"csv extension", "tools.csv", "", "[not json]", FormatCSV, false},
		{"json extension", "TOOLS.JSON", "", "name,link", FormatJSON, false},
		{"content type json", "upload", "application/json", "name", FormatJSON, false},
		{"content type csv", "upload.txt", "text/csv", "{", FormatCSV, false},
		{"sniff object", "", "", "  {\"name\":\"a\"}", FormatJSON, false},
		{"sniff array", "data.txt", "text/plain", "\n[{}]", FormatJSON, false},
		{"sniff csv", "", "", "name,category", FormatCSV, false},
		{"sniff with bom", "", "", "\xEF\xBB\xBF[]", FormatJSON, false},
		{"unsupported extension", "tools.xlsx", "", "name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.fileName, tt.contentType, []byte(tt.data))
			if tt.wantErr {
				if !IsFormatError(err) {
					t.Fatalf("DetectFormat() error = %v, want FormatError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []RawRecord
	}{
		{
			name: "header only",
			data: "name,category,link,description\n",
			want: []RawRecord{},
		},
		{
			name: "empty",
			data: "",
			want: []RawRecord{},
		},
		{
			name: "blank lines only",
			data: "\n\n",
			want: []RawRecord{},
		},
		{
			name: "bom and whitespace only",
			data: "\xEF\xBB\xBF  \r\n\t",
			want: []RawRecord{},
		},
		{
			name: "headers lower cased and trimmed",
			data: " Name , CATEGORY \nChatGPT,AI Chat\n",
			want: []RawRecord{{"name": "ChatGPT", "category": "AI Chat"}},
		},
		{
			name: "crlf and blank lines",
			data: "\r\nname,link\r\n\r\nA,https://a\r\n,\r\nB,https://b\r\n",
			want: []RawRecord{
				{"name": "A", "link": "https://a"},
				{"name": "B", "link": "https://b"},
			},
		},
		{
			name: "quoted commas quotes and newlines",
			data: "name,description\n\"Tool, Inc\",\"says \"\"hi\"\"\ntwice\"\n",
			want: []RawRecord{{"name": "Tool, Inc", "description": "says \"hi\"\ntwice"}},
		},
		{
			name: "short rows padded extra fields dropped",
			data: "name,category,link\nA\nB,Research,https://b,extra\n",
			want: []RawRecord{
				{"name": "A", "category": "", "link": ""},
				{"name": "B", "category": "Research", "link": "https://b"},
			},
		},
		{
			name: "first duplicate header wins",
			data: "name,Name\nfirst,second\n",
			want: []RawRecord{{"name": "first"}},
		},
		{
			name: "bom stripped",
			data: "\xEF\xBB\xBFname\nA\n",
			want: []RawRecord{{"name": "A"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), FormatCSV)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			assertRecords(t, got, tt.want)
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []RawRecord
	}{
		{
			name: "array of objects",
			data: `[{"name":"A","Category":"Research"},{"name":"B"}]`,
			want: []RawRecord{{"name": "A", "Category": "Research"}, {"name": "B"}},
		},
		{
			name: "single object same as one element array",
			data: `{"name":"A"}`,
			want: []RawRecord{{"name": "A"}},
		},
		{
			name: "empty array",
			data: `[]`,
			want: []RawRecord{},
		},
		{
			name: "non-object elements become empty records",
			data: `[{"name":"A"}, 5, "x", null]`,
			want: []RawRecord{{"name": "A"}, {}, {}, {}},
		},
		{
			name: "values coerced to strings",
			data: `{"name":"A","price":12.50,"free":true,"link":null,"tags":["x","y"],"meta":{"k":1}}`,
			want: []RawRecord{{
				"name": "A", "price": "12.50", "free": "true", "link": "", "tags": "x,y", "meta": `{"k":1}`,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), FormatJSON)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			assertRecords(t, got, tt.want)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		format    Format
		wantEmpty bool
	}{
		{"empty json", "", FormatJSON, true},
		{"whitespace json", "  \n\t ", FormatJSON, true},
		{"bom only json", "\xEF\xBB\xBF", FormatJSON, true},
		{"truncated json", `{"name":`, FormatJSON, false},
		{"scalar json", `"just a string"`, FormatJSON, false},
		{"number json", `42`, FormatJSON, false},
		{"trailing data", `{"name":"a"} {"name":"b"}`, FormatJSON, false},
		{"auto detected malformed", `[{"name":"a"`, FormatAuto, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.format)
			if got != nil {
				t.Errorf("Parse() records = %v, want nil", got)
			}
			if tt.wantEmpty {
				if !errors.Is(err, ErrEmptyFile) {
					t.Errorf("Parse() error = %v, want ErrEmptyFile", err)
				}
				return
			}
			if !IsFormatError(err) {
				t.Errorf("Parse() error = %v, want FormatError", err)
			}
			if errors.Is(err, ErrEmptyFile) {
				t.Error("malformed input reported as empty file")
			}
		})
	}
}

func TestParseAutoBlankIsEmptyCSV(t *testing.T) {
	got, err := Parse([]byte("  \n\t "), FormatAuto)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	assertRecords(t, got, []RawRecord{})
}

func assertRecords(t *testing.T, got, want []RawRecord) {
	t.Helper()
	if got == nil {
		t.Fatal("records = nil, want non-nil slice")
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Errorf("record %d = %v, want %v", i, got[i], want[i])
			continue
		}
		for k, v := range want[i] {
			if got[i][k] != v {
				t.Errorf("record %d[%q] = %q, want %q", i, k, got[i][k], v)
			}
		}
	}
}
