package model

import "time"

// Group is the persisted shared group for one (form, question) pair. It is
// the single resource multiple students race for; the claim CAS in the
// repository is what finally decides that race.
type Group struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	FormID     string    `json:"formId" bson:"formId"`
	QuestionID string    `json:"questionId" bson:"questionId"`
	Members    []string  `json:"members" bson:"members"`
	FilledBy   string    `json:"filledBy,omitempty" bson:"filledBy,omitempty"`
	FilledAt   time.Time `json:"filledAt,omitempty" bson:"filledAt,omitempty"`
}

// RosterStudent is one claimable candidate on a form's roster
type RosterStudent struct {
	FormID    string `json:"formId" bson:"formId"`
	Name      string `json:"name" bson:"name"`
	Email     string `json:"email,omitempty" bson:"email,omitempty"`
	Claimed   bool   `json:"claimed" bson:"claimed"`
	ClaimedBy string `json:"claimedBy,omitempty" bson:"claimedBy,omitempty"` // group id
}

// GroupSelectionStatus is the live availability snapshot for a group
// selection question. It is fetched fresh on every question entry and never
// cached across a session; other students may fill the group between reads.
type GroupSelectionStatus struct {
	IsFilled               bool     `json:"isFilled"`
	GroupMembers           []string `json:"groupMembers,omitempty"`
	FilledBy               string   `json:"filledBy,omitempty"`
	AvailableStudentsCount *int     `json:"availableStudentsCount,omitempty"`
	AvailableStudents      []string `json:"availableStudents,omitempty"`
}

// MemberValidation is the server verdict on a proposed member selection
type MemberValidation struct {
	Available          bool     `json:"available"`
	UnavailableMembers []string `json:"unavailableMembers,omitempty"`
	Message            string   `json:"message,omitempty"`
}
