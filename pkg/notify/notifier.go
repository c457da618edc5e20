// Package notify defines the notification port. Delivery is best-effort:
// failures are logged by implementations and never fail a simulation.
package notify

// Notifier pushes simulation lifecycle events to interested users.
type Notifier interface {
	NotifyStarted(scenarioID, userID string, estimatedSeconds int)
	NotifyProgress(scenarioID, userID string, progress float64, status, step string, etaSeconds int)
	NotifyCompleted(scenarioID, userID, runID string, execSeconds float64)
	NotifyError(scenarioID, userID, message string)
}
