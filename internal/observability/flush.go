package observability

import (
	"context"

	"go.uber.org/zap"
)

// FlushTelemetry writes the metrics textfile (when textfile is set) and flushes logs.
// Call once before process exit, on success and failure alike.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, textfile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if textfile != "" {
		err = WriteTextfile(textfile)
	}
	if logger != nil {
		// Sync on a terminal stderr reports EINVAL; nothing useful to do with it.
		_ = logger.Sync()
	}
	return err
}
