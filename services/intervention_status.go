package services

import "hotel-ops/models"

var interventionTransitions = map[string][]string{
	models.InterventionPending:    {models.InterventionAssigned, models.InterventionInProgress, models.InterventionCancelled},
	models.InterventionAssigned:   {models.InterventionInProgress, models.InterventionPending, models.InterventionCancelled},
	models.InterventionInProgress: {models.InterventionOnHold, models.InterventionCompleted, models.InterventionCancelled},
	models.InterventionOnHold:     {models.InterventionInProgress, models.InterventionCancelled},
	models.InterventionCompleted:  {models.InterventionValidated, models.InterventionInProgress},
	models.InterventionValidated:  {},
	models.InterventionCancelled:  {models.InterventionPending},
}

// AllowedTransitions returns the statuses an intervention in status may move
// to. The table is advisory: ChangeStatus logs but does not reject other moves.
func AllowedTransitions(status string) []string {
	next := interventionTransitions[status]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to appears in the transition table.
func CanTransition(from, to string) bool {
	for _, s := range interventionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// closesBlockage reports whether reaching status ends the room's unavailability.
func closesBlockage(status string) bool {
	switch status {
	case models.InterventionCompleted, models.InterventionValidated, models.InterventionCancelled:
		return true
	}
	return false
}
