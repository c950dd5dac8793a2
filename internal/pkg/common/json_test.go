package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSONPassThrough(t *testing.T) {
	clean := `{"category":"Food Product"}`
	assert.Equal(t, clean, SanitizeJSON(clean))
}

func TestSanitizeJSONTrimsWhitespace(t *testing.T) {
	assert.Equal(t, `{"a":1}`, SanitizeJSON("  \n\t{\"a\":1}\n  "))
}

func TestSanitizeJSONStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"ingredients\":[]}\n```"
	assert.Equal(t, `{"ingredients":[]}`, SanitizeJSON(raw))

	raw = "```\n{\"ingredients\":[]}\n```"
	assert.Equal(t, `{"ingredients":[]}`, SanitizeJSON(raw))
}

func TestSanitizeJSONExtractsBraceSpan(t *testing.T) {
	raw := `Sure! Here is the result you asked for:
{"category":"Cosmetic Item"}
Hope this helps!`
	assert.Equal(t, `{"category":"Cosmetic Item"}`, SanitizeJSON(raw))
}

func TestSanitizeJSONKeepsNestedBraces(t *testing.T) {
	raw := `prefix {"a":{"b":2}} suffix`
	assert.Equal(t, `{"a":{"b":2}}`, SanitizeJSON(raw))
}

func TestSanitizeJSONIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"a\":1}\n```",
		`text before {"a":1} text after`,
		`{"a":1}`,
		"no json here at all",
	}
	for _, raw := range inputs {
		once := SanitizeJSON(raw)
		assert.Equal(t, once, SanitizeJSON(once), "raw=%q", raw)
	}
}

func TestSanitizeJSONNoBracesReturnsAsIs(t *testing.T) {
	assert.Equal(t, "just prose", SanitizeJSON("  just prose  "))
}

func TestQuoteJSONKeys(t *testing.T) {
	raw := `{category: "Food Product", nested: {level: 2}}`
	repaired := QuoteJSONKeys(raw)

	var probe map[string]interface{}
	require.NoError(t, ParseJSON(repaired, &probe))
	assert.Equal(t, "Food Product", probe["category"])
}

func TestQuoteJSONKeysLeavesQuotedKeysAlone(t *testing.T) {
	raw := `{"category":"Food Product"}`
	assert.Equal(t, raw, QuoteJSONKeys(raw))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var probe map[string]interface{}
	err := ParseJSON(`{"a":1}{"b":2}`, &probe)
	require.Error(t, err)
}

func TestParseJSONStrictRejectsUnknownFields(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSON(`{"name":"x","extra":1}`, &out))
	require.Error(t, ParseJSONStrict(`{"name":"x","extra":1}`, &out))
}

func TestStringSliceToString(t *testing.T) {
	assert.Equal(t, "", StringSliceToString(nil))
	assert.Equal(t, "a", StringSliceToString([]string{"a"}))
	assert.Equal(t, "a, b, c", StringSliceToString([]string{"a", "b", "c"}))
}
