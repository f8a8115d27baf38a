package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStartupLoggerEmitsOneEvent(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", &buf)
	defer InitWithWriter("info", &bytes.Buffer{})

	NewStartupLogger("menu-web").
		Feature("validateKey", true).
		Config("imageModel", "gemini-2.5-flash-image").
		SSMParam("apiKey", "/menu-lens/gemini-api-key").
		InitDuration(15 * time.Millisecond).
		Log()

	var evt map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("startup event is not one JSON object: %v\n%s", err, buf.String())
	}
	process, ok := evt["process"].(map[string]interface{})
	if !ok || process["name"] != "menu-web" {
		t.Errorf("process.name missing: %v", evt)
	}
	if cfg, ok := evt["config"].(map[string]interface{}); !ok || cfg["imageModel"] != "gemini-2.5-flash-image" {
		t.Errorf("config missing: %v", evt)
	}
	if f, ok := evt["features"].(map[string]interface{}); !ok || f["validateKey"] != true {
		t.Errorf("features missing: %v", evt)
	}
	if evt["message"] != "Startup complete" {
		t.Errorf("message = %v", evt["message"])
	}
}
