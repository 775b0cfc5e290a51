package session

import (
	"github.com/goliatone/go-tplform/pkg/logging"
)

// NoticeKind classifies a Notice.
type NoticeKind string

const (
	NoticeLoaded         NoticeKind = "loaded"
	NoticeLoadFailed     NoticeKind = "load_failed"
	NoticeRendered       NoticeKind = "rendered"
	NoticeRenderFailed   NoticeKind = "render_failed"
	NoticeFormatFailed   NoticeKind = "format_failed"
	NoticeExported       NoticeKind = "exported"
	NoticeExportFailed   NoticeKind = "export_failed"
	NoticeStaleDiscarded NoticeKind = "stale_discarded"
	NoticeIgnoredFields  NoticeKind = "ignored_fields"
)

// Notice describes something the user should hear about. Failures carry Err;
// none of them end the session.
type Notice struct {
	Kind       NoticeKind
	Generation uint64
	Source     string
	Fields     []string
	Err        error
}

// Failed reports whether the notice describes a failure.
func (n Notice) Failed() bool {
	return n.Err != nil
}

// Notifier receives notices from a Controller.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(n Notice) {
	fn(n)
}

// LogNotifier reports notices through logger. Failures are logged at warn
// level, stale discards at debug and everything else at info.
func LogNotifier(logger logging.Logger) Notifier {
	logger = logging.OrNop(logger)
	return NotifierFunc(func(n Notice) {
		fields := []any{"kind", string(n.Kind), "generation", n.Generation}
		if n.Source != "" {
			fields = append(fields, "source", n.Source)
		}
		if len(n.Fields) > 0 {
			fields = append(fields, "fields", n.Fields)
		}
		switch {
		case n.Err != nil:
			logger.Warn("session action failed", append(fields, "error", n.Err)...)
		case n.Kind == NoticeStaleDiscarded:
			logger.Debug("session discarded stale outcome", fields...)
		default:
			logger.Info("session updated", fields...)
		}
	})
}

// Notifiers fans a notice out to several notifiers.
func Notifiers(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(n Notice) {
		for _, target := range notifiers {
			if target != nil {
				target.Notify(n)
			}
		}
	})
}
