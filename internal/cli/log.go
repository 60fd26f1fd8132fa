package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps read "HH:MM:SS.ms" (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Formatter:       formatter,
	})
}

// stage times one command step and logs its outcome with structured fields.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(l *log.Logger, name string) *stage {
	return &stage{logger: l, name: name, start: time.Now()}
}

// done logs msg with the stage name, keyvals and the elapsed time, e.g.
// `INFO converted stage=query id=7c1e… nodes=8 links=7 elapsed=12ms`.
func (s *stage) done(msg string, keyvals ...any) {
	fields := make([]any, 0, len(keyvals)+4)
	fields = append(fields, "stage", s.name)
	fields = append(fields, keyvals...)
	fields = append(fields, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, fields...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
