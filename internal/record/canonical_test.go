package record

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"json number", json.Number("75"), "75"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []any{1, 2, 3}, "[1,2,3]"},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"y": true, "x": false},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":false,"y":true},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes to surrogates 0xD83D..., which sort before U+FB01 in
	// UTF-16 but after it in UTF-8.
	obj := map[string]any{
		"\uFB01":     1,
		"\U0001F600": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uFB01\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("R&D <Labs>")
	require.NoError(t, err)
	assert.Equal(t, `"R&D <Labs>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	result, err := MarshalCanonical("Cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"Caf\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by "u2028" stays escaped.
	result, err = MarshalCanonical(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"float", 1.5},
		{"float number", json.Number("1.5")},
		{"nested null", map[string]any{"a": nil}},
		{"unsupported", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			require.Error(t, err)
		})
	}
}

func TestEncodePreferences(t *testing.T) {
	data, err := Encode(Preferences{MatchThreshold: 75, EmailNotifications: true})
	require.NoError(t, err)
	assert.Equal(t, `{"emailNotifications":true,"matchThreshold":75}`, string(data))
}

func TestEncodeChecklistSortsIDs(t *testing.T) {
	data, err := Encode(ChecklistState{"save-job": true, "apply-tab": false})
	require.NoError(t, err)
	assert.Equal(t, `{"apply-tab":false,"save-job":true}`, string(data))
}

func TestEncodeNilSliceRejected(t *testing.T) {
	_, err := Encode(DigestState{GeneratedOn: "Sat Oct 17 2026"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")
}

func TestEncodeDigestGolden(t *testing.T) {
	digest := DigestState{
		Entries: []DigestEntry{
			{Title: "Senior React Developer", Company: "TechCorp", Score: 95},
			{Title: "Frontend Engineer", Company: "StartupXYZ", Score: 92},
			{Title: "UI/UX Developer", Company: "DesignCo", Score: 85},
		},
		GeneratedOn: "Sat Oct 17 2026",
	}

	data, err := Encode(digest)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "digest_record", data)
}
