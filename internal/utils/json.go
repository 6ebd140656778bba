package utils

import (
	"strings"
)

// StripCodeFence removes a surrounding Markdown code block (```lang ... ```)
// from model output and trims whitespace. Text without a fence is returned trimmed.
func StripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	// Drop the info string (```json, ```markdown, ...) up to the first newline.
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
		if info := strings.TrimSpace(cleaned[:nl]); !strings.ContainsAny(info, " \t") {
			cleaned = cleaned[nl+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	return strings.TrimSpace(cleaned)
}
