package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus enum. The set is open on purpose: administrators may set any
// status string, these are just the values the product knows about.
type ReportStatus string

const (
	StatusNew          ReportStatus = "new"
	StatusAcknowledged ReportStatus = "acknowledged"
	StatusInProgress   ReportStatus = "in_progress"
	StatusResolved     ReportStatus = "resolved"
	StatusRejected     ReportStatus = "rejected"
)

// ReportCategory enum
type ReportCategory string

const (
	CategoryRoad        ReportCategory = "Road"
	CategoryWater       ReportCategory = "Water"
	CategorySanitation  ReportCategory = "Sanitation"
	CategoryElectricity ReportCategory = "Electricity"
	CategoryOther       ReportCategory = "Other"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch ReportCategory(c) {
	case CategoryRoad, CategoryWater, CategorySanitation, CategoryElectricity, CategoryOther:
		return true
	}
	return false
}

type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// UrgencyVote is a single user's 1..5 rating, embedded in the report. A user
// has at most one entry; a revote overwrites the value in place.
type UrgencyVote struct {
	UserID string `bson:"user_id" json:"user_id"`
	Vote   int    `bson:"vote" json:"vote"`
}

// MinUrgency and MaxUrgency bound the vote value domain.
const (
	MinUrgency = 1
	MaxUrgency = 5
)

// Report is a citizen-submitted incident. urgency_score is always the mean of
// the embedded votes (0.0 when there are none) and urgency_votes_count always
// equals len(urgency_votes); the repository maintains both atomically.
type Report struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Category          ReportCategory     `bson:"category" json:"category"`
	Location          Location           `bson:"location" json:"location"`
	PhotoURL          string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Status            ReportStatus       `bson:"status" json:"status"`
	AssignedTo        *string            `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	UrgencyScore      float64            `bson:"urgency_score" json:"urgency_score"`
	UrgencyVotesCount int                `bson:"urgency_votes_count" json:"urgency_votes_count"`
	UrgencyVotes      []UrgencyVote      `bson:"urgency_votes" json:"urgency_votes"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// VoteBy returns the report's existing vote for userID, or nil.
func (r *Report) VoteBy(userID string) *UrgencyVote {
	for i := range r.UrgencyVotes {
		if r.UrgencyVotes[i].UserID == userID {
			return &r.UrgencyVotes[i]
		}
	}
	return nil
}
