package logger_test

import (
	"github.com/edvald/garden-1/internal/logger"
)

func Example_entry() {
	root := logger.GetLogger().Root()

	// Each task works on its own child entry
	entry := root.Info("api", "Pushing")
	entry.SetSuccess("Ready")

	skipped := root.Info("worker", "Push disabled")
	skipped.Stop()

	logger.Op.WithFields(map[string]interface{}{
		"module": "api",
	}).Debug("push dispatched")
}
