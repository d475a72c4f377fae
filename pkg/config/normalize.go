package config

import (
	"encoding/json"
	"strconv"
	"strings"
)

// authKeys are setting keys whose values are credentials and must never be
// coerced; whatever string the caller supplied is stored verbatim.
var authKeys = map[string]bool{
	"api_user":     true,
	"api_password": true,
}

// NormalizeValue coerces a raw setting value into its natural type: integers
// and floats become numbers, true/false become booleans, bracketed values
// parse as string lists, and quoted values unquote to plain strings.
// Credential keys bypass coercion entirely.
func NormalizeValue(key, value string) interface{} {
	if authKeys[key] {
		return value
	}

	// Explicitly quoted values stay strings.
	if unquoted, ok := unquote(value); ok {
		return unquoted
	}

	switch value {
	case "true", "True":
		return true
	case "false", "False":
		return false
	}

	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	if list, ok := parseList(value); ok {
		return list
	}

	return value
}

// unquote strips one level of matching single or double quotes.
func unquote(value string) (string, bool) {
	if len(value) < 2 {
		return "", false
	}
	first, last := value[0], value[len(value)-1]
	if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
		return value[1 : len(value)-1], true
	}
	return "", false
}

// parseList parses a bracketed list of strings in either JSON form or the
// single-quoted form older clients send.
func parseList(value string) ([]string, bool) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, false
	}

	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		return list, true
	}

	// Single-quoted entries: re-quote and retry, provided no entry embeds a
	// double quote of its own.
	if !strings.Contains(trimmed, `"`) {
		requoted := strings.ReplaceAll(trimmed, "'", `"`)
		if err := json.Unmarshal([]byte(requoted), &list); err == nil {
			return list, true
		}
	}
	return nil, false
}
