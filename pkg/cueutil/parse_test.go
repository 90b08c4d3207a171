// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Config: {
	name?:    string & !=""
	level?:   "low" | "high"
	tags?:    [...string]
	limits?: {
		max?: int & >=0
	}
}
`

type testConfig struct {
	Name   string   `json:"name"`
	Level  string   `json:"level"`
	Tags   []string `json:"tags"`
	Limits struct {
		Max int `json:"max"`
	} `json:"limits"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`
name: "bundle"
level: "high"
tags: ["a", "b"]
limits: max: 3
`)
	res, err := ParseAndDecode[testConfig]([]byte(testSchema), data, "#Config", WithFilename("test.cue"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}
	got := res.Value
	if got.Name != "bundle" || got.Level != "high" || len(got.Tags) != 2 || got.Limits.Max != 3 {
		t.Errorf("decoded value = %+v", got)
	}
}

func TestParseAndDecode_Map(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[map[string]any]([]byte(testSchema), []byte(`level: "low"`), "#Config")
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}
	if (*res.Value)["level"] != "low" {
		t.Errorf("decoded map = %v", *res.Value)
	}
	if _, ok := (*res.Value)["name"]; ok {
		t.Error("unset optional field should not be decoded")
	}
}

func TestParseAndDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantSub string
	}{
		{name: "syntax error", data: `name: "x`, wantSub: "test.cue"},
		{name: "schema violation", data: `level: "medium"`, wantSub: "level"},
		{name: "closed definition", data: `unknown: 1`, wantSub: "unknown"},
		{name: "nested path", data: `limits: max: -1`, wantSub: "limits.max"},
		{name: "too large", data: `name: "abcdef"`, opts: []Option{WithMaxFileSize(4)}, wantSub: "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]Option{WithFilename("test.cue")}, tt.opts...)
			_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(tt.data), "#Config", opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestParseAndDecode_Concrete(t *testing.T) {
	t.Parallel()

	schema := []byte(`#Config: { name: string }`)
	if _, err := ParseAndDecode[map[string]any](schema, []byte(`{}`), "#Config", WithConcrete()); err == nil {
		t.Error("expected an error for a non-concrete required field")
	}
}

func TestParseAndDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(`name: "x"`), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("expected missing definition error, got %v", err)
	}
}
