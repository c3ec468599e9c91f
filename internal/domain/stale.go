package domain

import "time"

// StaleLeadThreshold is how long a lead may sit without activity before it
// is flagged for follow-up.
const StaleLeadThreshold = 7 * 24 * time.Hour

// IsLeadStale reports whether a lead has been idle past the threshold.
// Terminal leads are never stale; converted and dismissed leads need no
// further chasing.
func IsLeadStale(lead *Lead, now time.Time) bool {
	if lead.Status.IsTerminal() {
		return false
	}
	return now.Sub(lead.LastActivityAt) > StaleLeadThreshold
}
