package services

import "go-campwatch/internal/activity/models"

// Classify maps a Session's post-computation state to exactly one
// classification tag, first match wins.
func Classify(s *models.Session) models.Classification {
	if sessionHasSmartbomb(s) {
		return models.ClassSmartbomb
	}
	if s.Members.Len() >= 40 {
		return models.ClassBattle
	}
	roaming := s.VisitedSystems.Len() > 1
	if roaming && s.Probability >= 5 {
		return models.ClassRoamingCamp
	}
	if s.Probability >= 5 {
		if s.Members.Len() == 1 {
			return models.ClassSoloCamp
		}
		return models.ClassCamp
	}
	if roaming {
		if s.Members.Len() == 1 {
			return models.ClassSoloRoam
		}
		return models.ClassRoam
	}
	return models.ClassActivity
}
