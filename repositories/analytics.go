package repositories

import (
	"context"
	"fmt"
	"time"

	"fixmycity-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Analytics is the triage dashboard summary.
type Analytics struct {
	TotalReports      int64           `json:"total_reports"`
	OpenReports       int64           `json:"open_reports"`
	ReportsByCategory []CategoryCount `json:"reports_by_category"`
	Last7Days         []DayCount      `json:"last_7_days"`
	TopUrgent         []UrgentReport  `json:"top_urgent"`
}

type CategoryCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type UrgentReport struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Category     string             `bson:"category" json:"category"`
	UrgencyScore float64            `bson:"urgency_score" json:"urgency_score"`
	VotesCount   int                `bson:"urgency_votes_count" json:"urgency_votes_count"`
}

// Analytics aggregates report counts by category, daily submission volume for
// the last week, and the five most urgent reports by score.
func (r *ReportRepo) Analytics(ctx context.Context) (*Analytics, error) {
	out := &Analytics{}

	categoryPipeline := []bson.M{
		{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
		{"$project": bson.M{"name": "$_id", "value": "$count", "_id": 0}},
	}
	cursor, err := r.col.Aggregate(ctx, categoryPipeline)
	if err != nil {
		return nil, fmt.Errorf("category analytics: %w", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &out.ReportsByCategory); err != nil {
		return nil, fmt.Errorf("decode category analytics: %w", err)
	}

	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

		count, err := r.col.CountDocuments(ctx, bson.M{
			"created_at": bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)},
		})
		if err != nil {
			return nil, fmt.Errorf("daily analytics for %s: %w", day.Format("2006-01-02"), err)
		}
		out.Last7Days = append(out.Last7Days, DayCount{Date: day.Format("2006-01-02"), Count: count})
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "urgency_score", Value: -1}, {Key: "urgency_votes_count", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{
			"_id": 1, "title": 1, "category": 1,
			"urgency_score": 1, "urgency_votes_count": 1,
		})

	topCursor, err := r.col.Find(ctx, bson.M{"urgency_votes_count": bson.M{"$gt": 0}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("top urgent reports: %w", err)
	}
	defer topCursor.Close(ctx)
	if err := topCursor.All(ctx, &out.TopUrgent); err != nil {
		return nil, fmt.Errorf("decode top urgent reports: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("total report count: %w", err)
	}
	out.TotalReports = total

	open, err := r.col.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []models.ReportStatus{
			models.StatusNew, models.StatusAcknowledged, models.StatusInProgress,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("open report count: %w", err)
	}
	out.OpenReports = open

	return out, nil
}
