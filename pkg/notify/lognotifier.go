package notify

import "go.uber.org/zap"

// LogNotifier writes lifecycle events to the structured log. It is the
// default notifier and the fallback when no push channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyStarted(scenarioID, userID string, estimatedSeconds int) {
	n.logger.Info("simulation started",
		zap.String("scenario_id", scenarioID),
		zap.String("user_id", userID),
		zap.Int("estimated_seconds", estimatedSeconds))
}

func (n *LogNotifier) NotifyProgress(scenarioID, userID string, progress float64, status, step string, etaSeconds int) {
	n.logger.Debug("simulation progress",
		zap.String("scenario_id", scenarioID),
		zap.String("user_id", userID),
		zap.Float64("progress", progress),
		zap.String("status", status),
		zap.String("step", step),
		zap.Int("eta_seconds", etaSeconds))
}

func (n *LogNotifier) NotifyCompleted(scenarioID, userID, runID string, execSeconds float64) {
	n.logger.Info("simulation completed",
		zap.String("scenario_id", scenarioID),
		zap.String("user_id", userID),
		zap.String("run_id", runID),
		zap.Float64("exec_seconds", execSeconds))
}

func (n *LogNotifier) NotifyError(scenarioID, userID, message string) {
	n.logger.Warn("simulation error notification",
		zap.String("scenario_id", scenarioID),
		zap.String("user_id", userID),
		zap.String("message", message))
}
