package logger

import (
	"io"
	"log"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type logEntry struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

var output = log.New(os.Stdout, "", 0)

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	output.SetOutput(w)
}

func emit(level, msg string, extra map[string]interface{}) {
	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
		Extra:     extra,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		entry.Extra = map[string]interface{}{"marshal_error": err.Error()}
		data, _ = json.Marshal(entry)
	}
	output.Println(string(data))
}

func Info(msg string, extra map[string]interface{}) {
	emit("info", msg, extra)
}

func Warn(msg string, extra map[string]interface{}) {
	emit("warn", msg, extra)
}

func Error(msg string, extra map[string]interface{}) {
	emit("error", msg, extra)
}
