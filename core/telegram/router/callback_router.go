package router

import (
	"time"

	tg "github.com/m3rciful/votebot/core/telegram"
	"github.com/m3rciful/votebot/core/telegram/callbacks"
	"github.com/m3rciful/votebot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// PayloadDispatcher routes raw `_`-joined click values. Implementations keep
// an ordered (predicate, handler) list; the first match wins and unmatched
// values are reported as not handled, never as an error.
type PayloadDispatcher interface {
	Dispatch(c tele.Context, value string) (bool, error)
}

// PayloadRoute returns the OnCallback route that feeds inline button clicks
// to the dispatcher.
func PayloadRoute(d PayloadDispatcher) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		value := callbacks.RawValue(c)
		name := "callback." + normalizeHandlerName(callbacks.Action(value))
		extras := []slog.Attr{slog.String("cb_key", value)}

		_ = c.Respond()

		handled := false
		err := handleWithSummary(c, name, start, "", "", func() error {
			var dErr error
			handled, dErr = d.Dispatch(c, value)
			return dErr
		}, extras...)
		if err == nil && !handled {
			logHandlerSummary(c, name, start, "skip", "ok", nil,
				slog.String("reason", "unmatched_payload"))
		}
		return err
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
