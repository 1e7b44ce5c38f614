package frontmatter

import (
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   *Frontmatter
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid frontmatter",
			content: `---
id: "nd:m1.a.b"
title: Test Note
type: notebox
tags: [test, example]
created: 2023-01-01 10:00:00
modified: 2023-01-02 11:00:00
---

# Test Content

This is the body.`,
			wantFM: &Frontmatter{
				ID:       "nd:m1.a.b",
				Title:    "Test Note",
				Type:     "notebox",
				Tags:     []string{"test", "example"},
				Created:  "2023-01-01 10:00:00",
				Modified: "2023-01-02 11:00:00",
			},
			wantBody: "\n# Test Content\n\nThis is the body.",
			wantErr:  false,
		},
		{
			name:     "no frontmatter",
			content:  "# Just a title\n\nSome content.",
			wantFM:   nil,
			wantBody: "# Just a title\n\nSome content.",
			wantErr:  false,
		},
		{
			name: "invalid yaml",
			content: `---
id: test
title: [invalid
---

Body`,
			wantFM: nil,
			wantBody: `---
id: test
title: [invalid
---

Body`,
			wantErr: true,
		},
		{
			name: "minimal frontmatter without body",
			content: `---
id: minimal
title: Minimal Note
created: 2023-01-01 10:00:00
modified: 2023-01-01 10:00:00
---`,
			wantFM: &Frontmatter{
				ID:       "minimal",
				Title:    "Minimal Note",
				Tags:     []string{},
				Created:  "2023-01-01 10:00:00",
				Modified: "2023-01-01 10:00:00",
			},
			wantBody: "",
			wantErr:  false,
		},
		{
			name:    "windows line endings",
			content: "---\r\nid: win\r\ntitle: Win\r\n---\r\nBody",
			wantFM: &Frontmatter{
				ID:    "win",
				Title: "Win",
				Tags:  []string{},
			},
			wantBody: "Body",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFM, gotBody, err := Parse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(gotFM, tt.wantFM) {
				t.Errorf("Parse() gotFM = %+v, want %+v", gotFM, tt.wantFM)
			}
			if gotBody != tt.wantBody {
				t.Errorf("Parse() gotBody = %q, want %q", gotBody, tt.wantBody)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		fm   *Frontmatter
		want string
	}{
		{
			name: "complete frontmatter",
			fm: &Frontmatter{
				ID:       "test-123",
				Title:    "Test Note",
				Type:     "notebox",
				Tags:     []string{"tag1", "tag2"},
				Created:  "2023-01-01 10:00:00",
				Modified: "2023-01-02 11:00:00",
			},
			want: `---
id: test-123
title: Test Note
type: notebox
tags: [tag1, tag2]
created: 2023-01-01 10:00:00
modified: 2023-01-02 11:00:00
---`,
		},
		{
			name: "minimal frontmatter",
			fm: &Frontmatter{
				ID:       "minimal",
				Title:    "Minimal",
				Tags:     []string{},
				Created:  "2023-01-01 10:00:00",
				Modified: "2023-01-01 10:00:00",
			},
			want: `---
id: minimal
title: Minimal
tags: []
created: 2023-01-01 10:00:00
modified: 2023-01-01 10:00:00
---`,
		},
		{
			name: "with special characters",
			fm: &Frontmatter{
				ID:       "nd:x.y.z",
				Title:    "Note: Special, Characters",
				Tags:     []string{"tag:special", "tag,comma"},
				Created:  "2023-01-01 10:00:00",
				Modified: "2023-01-01 10:00:00",
			},
			want: `---
id: "nd:x.y.z"
title: "Note: Special, Characters"
tags: ["tag:special", "tag,comma"]
created: 2023-01-01 10:00:00
modified: 2023-01-01 10:00:00
---`,
		},
		{
			name: "ambiguous scalars",
			fm: &Frontmatter{
				ID:       "42",
				Title:    "yes",
				Created:  "2023-01-01 10:00:00",
				Modified: "2023-01-01 10:00:00",
			},
			want: `---
id: "42"
title: "yes"
tags: []
created: 2023-01-01 10:00:00
modified: 2023-01-01 10:00:00
---`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.fm)
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildContent(t *testing.T) {
	fm := &Frontmatter{
		ID:       "test",
		Title:    "Test",
		Tags:     []string{},
		Created:  "2023-01-01 10:00:00",
		Modified: "2023-01-01 10:00:00",
	}

	tests := []struct {
		name        string
		body        string
		wantSpacing bool
	}{
		{
			name:        "body without leading newline",
			body:        "# Title\n\nContent",
			wantSpacing: true,
		},
		{
			name:        "body with leading newline",
			body:        "\n# Title\n\nContent",
			wantSpacing: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildContent(fm, tt.body)
			frontmatter := Build(fm)

			want := frontmatter + "\n" + tt.body
			if tt.wantSpacing {
				want = frontmatter + "\n\n" + tt.body
			}
			if got != want {
				t.Errorf("BuildContent() spacing incorrect, got = %q, want = %q", got, want)
			}
		})
	}
}

func TestFormatAndParseTimestamp(t *testing.T) {
	now := time.Date(2023, 1, 15, 14, 30, 45, 0, time.UTC)

	formatted := FormatTimestamp(now)
	expected := "2023-01-15 14:30:45"

	if formatted != expected {
		t.Errorf("FormatTimestamp() = %q, want %q", formatted, expected)
	}

	parsed, err := ParseTimestamp(formatted)
	if err != nil {
		t.Errorf("ParseTimestamp() error = %v", err)
	}

	if !parsed.Equal(now) {
		t.Errorf("ParseTimestamp() = %v, want %v", parsed, now)
	}
}

func TestMergeTags(t *testing.T) {
	tests := []struct {
		name    string
		sources [][]string
		want    []string
	}{
		{
			name:    "merge with duplicates",
			sources: [][]string{{"a", "b"}, {"b", "c"}, {"a", "d"}},
			want:    []string{"a", "b", "c", "d"},
		},
		{
			name:    "empty sources",
			sources: [][]string{{}, {}, {}},
			want:    []string{},
		},
		{
			name:    "with empty strings",
			sources: [][]string{{"a", "", "b"}, {"", "c"}},
			want:    []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeTags(tt.sources...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := &Frontmatter{
		ID:       "nd:roundtrip.1.2",
		Title:    "Round Trip: \"quoted\" & more",
		Type:     "notebox",
		Tags:     []string{"test", "front matter", "a,b"},
		Created:  "2023-01-01 10:00:00",
		Modified: "2023-01-02 11:00:00",
	}

	body := "# Test Content\n\nThis is a test."

	content := BuildContent(original, body)

	parsed, parsedBody, err := Parse(content)
	if err != nil {
		t.Fatalf("Failed to parse round-trip content: %v", err)
	}

	if !reflect.DeepEqual(parsed, original) {
		t.Errorf("Round trip frontmatter mismatch\noriginal: %+v\nparsed: %+v", original, parsed)
	}

	// BuildContent inserts a blank line that Parse keeps in the body
	expectedBody := "\n" + body
	if parsedBody != expectedBody {
		t.Errorf("Round trip body mismatch\noriginal: %q\nparsed: %q", expectedBody, parsedBody)
	}
}
