package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements IOHandler for NDJSON communication.
//
// Each input line is either an object {"input":"ab"}, a JSON string "ab",
// or raw text. Each verdict is written as one JSON object per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

type jsonRequest struct {
	Input *string `json:"input"`
}

type jsonMessage struct {
	Error string `json:"error"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return DecodeInput(strings.TrimSpace(text)), nil
}

// DecodeInput extracts the query from one message: an object
// {"input":"ab"}, a JSON string "ab", or the raw text itself.
func DecodeInput(text string) string {
	if strings.HasPrefix(text, "{") {
		var req jsonRequest
		if err := json.Unmarshal([]byte(text), &req); err == nil && req.Input != nil {
			return *req.Input
		}
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val
	}

	// Plain text fallback.
	return text
}

func (h *JSONHandler) Verdict(ctx context.Context, v Verdict) error {
	return h.Encoder.Encode(v)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonMessage{Error: msg})
}
