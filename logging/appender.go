package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeFormat is the timestamp layout of every appender.
const TimeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries, the write side of a zapcore.Core. An observer core from
// zaptest/observer is an Appender too.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// fieldEncoder renders fields alone, in order, as one JSON object.
var fieldEncoder = zapcore.EncoderConfig{SkipLineEnding: true}

// formatEntry renders entry as tab separated time, level, logger, caller, message and fields.
// The line is returned even when the fields fail to encode.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{
		entry.Time.Format(TimeFormat),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		parts = append(parts, shortCaller(entry.Caller))
	}
	parts = append(parts, entry.Message)
	if len(fields) > 0 {
		buf, err := zapcore.NewJSONEncoder(fieldEncoder).EncodeEntry(zapcore.Entry{}, fields)
		if err != nil {
			return strings.Join(parts, "\t"), err
		}
		parts = append(parts, buf.String())
		buf.Free()
	}
	return strings.Join(parts, "\t"), nil
}

// shortCaller keeps the last directory and the file name, e.g. "fpdlink/session.go:88".
func shortCaller(caller zapcore.EntryCaller) string {
	file := caller.File
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		if idx = strings.LastIndexByte(file[:idx], '/'); idx >= 0 {
			file = file[idx+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, caller.Line)
}

// ConsoleAppender writes human readable lines to a writer.
type ConsoleAppender struct {
	io.Writer
}

// NewWriterAppender returns an appender writing to w.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// NewFileAppender returns an appender writing to a size-rotated log file. Rotated files are
// compressed and at most four are kept. The returned closer releases the file.
func NewFileAppender(filename string) (ConsoleAppender, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    64,
		MaxBackups: 4,
		Compress:   true,
	}
	return ConsoleAppender{file}, file
}

// Write outputs the log entry to the underlying stream.
func (a ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	fmt.Fprintln(a.Writer, line)
	return err
}

// Sync is a no-op.
func (a ConsoleAppender) Sync() error {
	return nil
}
