// Package llmutils provides helpers for cleaning and formatting text that
// crosses the LLM boundary, where JSON often arrives wrapped in prose or
// markdown fences.
package llmutils

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CleanJSON trims any prose around a JSON value, as models tend to reply
// like "Sure, here you go: {...}. Let me know if you need more."
func CleanJSON(bs []byte) []byte {
	start := indexEither(bs, '{', '[', bytes.IndexByte, func(a, b int) int { return min(a, b) })
	if start > 0 {
		bs = bs[start:]
	}
	end := indexEither(bs, '}', ']', bytes.LastIndexByte, func(a, b int) int { return max(a, b) })
	if end >= 0 {
		bs = bs[:end+1]
	}
	return bs
}

func indexEither(bs []byte, a, b byte, index func([]byte, byte) int, pick func(int, int) int) int {
	ia := index(bs, a)
	ib := index(bs, b)
	switch {
	case ia == -1:
		return ib
	case ib == -1:
		return ia
	default:
		return pick(ia, ib)
	}
}

var fence = []byte("```")

// TrimBackticks removes a surrounding ```json ... ``` fence, if any.
func TrimBackticks(text string) string {
	return string(BytesTrimBackticks([]byte(text)))
}

// BytesTrimBackticks removes a surrounding ```json ... ``` fence, if any.
func BytesTrimBackticks(bs []byte) []byte {
	start := bytes.Index(bs, fence)
	if start == -1 {
		return bs
	}
	start += len(fence)
	// skip the language tag on the opening fence line
	for i := start; i < len(bs) && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			start = i + 1
			break
		}
	}
	body := bs[start:]
	if end := bytes.LastIndex(body, fence); end != -1 {
		body = body[:end]
	}
	return bytes.TrimSpace(body)
}

// ToJSON marshals the value, ignoring errors. For prompt and log output only.
func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

// ToJSONIndent marshals the value with indentation, ignoring errors.
func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

// JSONIndent re-indents a JSON document.
func JSONIndent(body string) string {
	var buf bytes.Buffer
	_ = json.Indent(&buf, []byte(body), "", "\t")
	return buf.String()
}

// BackticksJSON wraps a JSON document in a markdown fence for prompts.
func BackticksJSON(js string) string {
	return "\n```json\n" + strings.TrimSpace(js) + "\n```\n"
}
