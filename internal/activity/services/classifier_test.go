package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-campwatch/internal/activity/models"
)

func classifierSession(visitedSystems int, members int, probability int) *models.Session {
	s := models.NewSession("s1", models.SeedKindCamp, 30000142, nil)
	for i := 0; i < visitedSystems; i++ {
		s.VisitedSystems.Add(int32(30000142 + i))
	}
	for i := 0; i < members; i++ {
		s.Members.Add(int64(i + 1))
	}
	s.Probability = probability
	return s
}

func TestClassifySmartbombTakesPriorityOverEverything(t *testing.T) {
	s := classifierSession(1, 50, 90)
	s.Events = append(s.Events, models.EnrichedEvent{
		Event: models.Event{Attackers: []models.Attacker{{ShipTypeID: ptrInt64(24692)}}},
	})
	assert.Equal(t, models.ClassSmartbomb, Classify(s))
}

func TestClassifyBattleAtFortyMembersRegardlessOfProbability(t *testing.T) {
	s := classifierSession(1, 40, 0)
	assert.Equal(t, models.ClassBattle, Classify(s))
}

func TestClassifyRoamingCampWhenRoamingWithHighProbability(t *testing.T) {
	s := classifierSession(2, 5, 10)
	assert.Equal(t, models.ClassRoamingCamp, Classify(s))
}

func TestClassifyCampWhenStationaryWithHighProbability(t *testing.T) {
	s := classifierSession(1, 5, 10)
	assert.Equal(t, models.ClassCamp, Classify(s))
}

func TestClassifySoloCampWhenSingleMemberWithHighProbability(t *testing.T) {
	s := classifierSession(1, 1, 10)
	assert.Equal(t, models.ClassSoloCamp, Classify(s))
}

func TestClassifyRoamWhenRoamingWithLowProbability(t *testing.T) {
	s := classifierSession(2, 5, 0)
	assert.Equal(t, models.ClassRoam, Classify(s))
}

func TestClassifySoloRoamWhenRoamingSingleMemberLowProbability(t *testing.T) {
	s := classifierSession(2, 1, 0)
	assert.Equal(t, models.ClassSoloRoam, Classify(s))
}

func TestClassifyActivityWhenStationaryWithLowProbability(t *testing.T) {
	s := classifierSession(1, 5, 0)
	assert.Equal(t, models.ClassActivity, Classify(s))
}

func TestClassifyProbabilityThresholdIsInclusiveAtFive(t *testing.T) {
	s := classifierSession(1, 5, 5)
	assert.Equal(t, models.ClassCamp, Classify(s))

	s2 := classifierSession(1, 5, 4)
	assert.Equal(t, models.ClassActivity, Classify(s2))
}

func ptrInt64(v int64) *int64 { return &v }
