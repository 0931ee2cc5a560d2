package utils

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

func InitSentry(dsn, environment, version string) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          "hospital-portal@" + version,
		TracesSampleRate: 0.2,
	})

	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	return nil
}

// FlushSentry waits for buffered events before the program exits.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

func CaptureError(err error, context map[string]interface{}) {
	if hub := sentry.CurrentHub(); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for k, v := range context {
				scope.SetExtra(k, v)
			}
			hub.CaptureException(err)
		})
	}
}
