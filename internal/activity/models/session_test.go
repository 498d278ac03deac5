package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionStartsEmptyAndActivity(t *testing.T) {
	name := "Stargate (Test)"
	s := NewSession("30000142-Stargate (Test)", SeedKindCamp, 30000142, &name)

	assert.Equal(t, SeedKindCamp, s.SeedKind)
	assert.Equal(t, ClassActivity, s.Classification)
	assert.Equal(t, 0, s.Members.Len())
	assert.NotNil(t, s.StargateName)
	assert.Equal(t, name, *s.StargateName)
}

func TestSessionDedupeByEventID(t *testing.T) {
	s := NewSession("s1", SeedKindRoam, 1, nil)
	assert.False(t, s.HasSeenEvent(100))
	s.MarkEventSeen(100)
	assert.True(t, s.HasSeenEvent(100))
}

func TestRecordMaxProbabilityIsMonotonic(t *testing.T) {
	s := NewSession("s1", SeedKindRoam, 1, nil)
	s.RecordMaxProbability(40)
	s.RecordMaxProbability(10) // lower, must not regress max
	assert.Equal(t, 40, s.MaxProbabilitySeen)
	s.RecordMaxProbability(55)
	assert.Equal(t, 55, s.MaxProbabilitySeen)
}

func TestClassificationIsCampFamily(t *testing.T) {
	campFamily := []Classification{ClassCamp, ClassSoloCamp, ClassSmartbomb, ClassRoamingCamp, ClassBattle}
	for _, c := range campFamily {
		assert.True(t, c.IsCampFamily(), "%s should be camp-family", c)
	}

	roamFamily := []Classification{ClassRoam, ClassSoloRoam, ClassActivity}
	for _, c := range roamFamily {
		assert.False(t, c.IsCampFamily(), "%s should not be camp-family", c)
	}
}
