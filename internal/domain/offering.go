package domain

import (
	"fmt"
	"strings"
	"time"
)

// TopicRef is a topic of a subject selected by the tutor.
type TopicRef struct {
	ID   string
	Name string
}

// SubjectOffering is a subject a tutor teaches, with rates and weekly availability.
type SubjectOffering struct {
	ID             int64
	TutorID        int64
	SubjectID      int64
	SubjectName    string
	SelectedTopics []TopicRef
	ModeRates      []ModeRate
	Availability   WeeklySchedule
	LegacyRates    *LegacyRates // NULL для предложений, созданных после перехода на ModeRates

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether userID is the tutor of the offering.
func (o *SubjectOffering) IsOwnedBy(userID int64) bool {
	return o.TutorID == userID
}

// ModeRate returns the rate configured for mode.
func (o *SubjectOffering) ModeRate(mode TeachingMode) (ModeRate, bool) {
	for _, r := range o.ModeRates {
		if r.Mode == mode {
			return r, true
		}
	}
	return ModeRate{}, false
}

// HasTopic reports whether topicID is among the selected topics.
func (o *SubjectOffering) HasTopic(topicID string) bool {
	for _, t := range o.SelectedTopics {
		if t.ID == topicID {
			return true
		}
	}
	return false
}

// ValidateTopics checks the topic limit and that ids are present and unique.
func ValidateTopics(topics []TopicRef) error {
	if len(topics) > MaxSelectedTopics {
		return fmt.Errorf("%w: %d topics, max %d", ErrInvalidInput, len(topics), MaxSelectedTopics)
	}
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fmt.Errorf("%w: empty topic id", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate topic %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Validate checks the offering invariants.
func (o *SubjectOffering) Validate() error {
	if o.TutorID <= 0 {
		return fmt.Errorf("%w: tutor id is required", ErrInvalidInput)
	}
	if o.SubjectID <= 0 {
		return fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(o.SubjectName) == "" {
		return fmt.Errorf("%w: subject name is required", ErrInvalidInput)
	}
	if err := ValidateTopics(o.SelectedTopics); err != nil {
		return err
	}
	if err := ValidateModeRates(o.ModeRates); err != nil {
		return err
	}
	if o.LegacyRates != nil {
		if o.LegacyRates.Individual < 0 || o.LegacyRates.Group < 0 || o.LegacyRates.Online < 0 {
			return fmt.Errorf("%w: negative legacy rate", ErrInvalidInput)
		}
	}
	return nil
}
