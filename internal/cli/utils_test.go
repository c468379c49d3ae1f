package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/legalbot/jai/internal/models"
)

func TestWriteAskResult_JSON(t *testing.T) {
	response := &models.AskResponse{
		Question:        "What is the notice period?",
		Answer:          "30 days before the renewal date.",
		MatchedQuestion: "What is the notice period?",
		Score:           0.9871,
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteAskResult(json): %v", err)
	}
	var decoded models.AskResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Answer != response.Answer || decoded.Score != response.Score {
		t.Errorf("decoded = %+v, want %+v", decoded, response)
	}
}

func TestWriteAskResult_text(t *testing.T) {
	response := &models.AskResponse{
		Question:        "notice period?",
		Answer:          "30 days before the renewal date.",
		MatchedQuestion: "What is the notice period?",
		Score:           0.8123,
	}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteAskResult(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"30 days before the renewal date.", "What is the notice period?", "0.8123"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteAskResult_unknownFormatTreatedAsText(t *testing.T) {
	response := &models.AskResponse{Answer: "an answer"}
	var buf bytes.Buffer
	if err := WriteAskResult(&buf, response, OutputFormat("unknown")); err != nil {
		t.Fatalf("WriteAskResult(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "an answer") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteStatus_text(t *testing.T) {
	status := &models.StatusResponse{
		Status:         "ok",
		Version:        "1.0.0",
		Answers:        42,
		Users:          3,
		Dimensions:     384,
		Provider:       "onnx",
		CorpusLoadedAt: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		DiskUsageBytes: 2 * 1024 * 1024,
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatalf("WriteStatus(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"ok", "1.0.0", "42", "onnx (384 dimensions)", "2024-06-01 09:30", "2.0 MiB"} {
		if !strings.Contains(out, sub) {
			t.Errorf("status output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteStatus_omitsZeroLoadTime(t *testing.T) {
	status := &models.StatusResponse{Status: "ok"}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatalf("WriteStatus(text): %v", err)
	}
	if strings.Contains(buf.String(), "Loaded at") {
		t.Errorf("status output should omit zero load time:\n%s", buf.String())
	}
}

func TestWriteStatus_JSON(t *testing.T) {
	status := &models.StatusResponse{Status: "ok", Answers: 7, Provider: "mock"}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputJSON); err != nil {
		t.Fatalf("WriteStatus(json): %v", err)
	}
	var decoded models.StatusResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Answers != 7 || decoded.Provider != "mock" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteHistory_text(t *testing.T) {
	history := &models.HistoryResponse{
		Turns: []models.ConversationTurn{
			{Question: "First question?", Answer: "First answer.", AskedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
			{Question: "Second question?", Answer: "Second answer.", AskedAt: time.Date(2024, 6, 1, 10, 5, 0, 0, time.UTC)},
		},
	}
	var buf bytes.Buffer
	if err := WriteHistory(&buf, history, OutputText); err != nil {
		t.Fatalf("WriteHistory(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"1.", "First question?", "First answer.", "2.", "Second question?"} {
		if !strings.Contains(out, sub) {
			t.Errorf("history output missing %q:\n%s", sub, out)
		}
	}
	if strings.Index(out, "First question?") > strings.Index(out, "Second question?") {
		t.Error("history should be printed oldest first")
	}
}

func TestWriteHistory_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, &models.HistoryResponse{}, OutputText); err != nil {
		t.Fatalf("WriteHistory(text): %v", err)
	}
	if !strings.Contains(buf.String(), "No conversation history") {
		t.Errorf("expected empty-history notice, got %q", buf.String())
	}
}

func TestWriteNoAnswer(t *testing.T) {
	var buf bytes.Buffer
	WriteNoAnswer(&buf, "unanswerable?")
	if !strings.Contains(buf.String(), "unanswerable?") {
		t.Errorf("expected question in notice, got %q", buf.String())
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{2 * 1024 * 1024, "2.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
