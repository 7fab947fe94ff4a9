// Package logging configures logrus for the command line tool.
package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// GetLevel parses a log level name. The empty string means info.
func GetLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "", "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.DebugLevel, fmt.Errorf("invalid log level: %v", level)
	}
}

// GetFormatter returns the formatter for "text", "json", or "json-pretty".
// Anything else means json.
func GetFormatter(format, timestampFormat string) logrus.Formatter {
	switch format {
	case "text":
		return &prettyFormatter{}
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true, TimestampFormat: timestampFormat}
	default:
		return &logrus.JSONFormatter{TimestampFormat: timestampFormat}
	}
}

// New returns a logger writing to stderr with the given level and format.
func New(level, format, timestampFormat string) (*logrus.Logger, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(GetFormatter(format, timestampFormat))
	return l, nil
}

// prettyFormatter prints the level and message on one line, then each field
// on its own line in key order.
type prettyFormatter struct{}

const fieldIndent = "  "

func (p *prettyFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(e.Level.String()), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		var val string
		switch v := e.Data[k].(type) {
		case string:
			val = v
		case error:
			val = v.Error()
		case fmt.Stringer:
			val = v.String()
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			val = string(raw)
		}
		b.WriteString(fieldIndent)
		b.WriteString(k)
		if strings.Contains(val, "\n") {
			b.WriteString(" = |\n")
			for _, line := range strings.Split(strings.TrimRight(val, "\n"), "\n") {
				b.WriteString(fieldIndent + fieldIndent)
				b.WriteString(line)
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteString(" = ")
		b.WriteString(val)
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}
