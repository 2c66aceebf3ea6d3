package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixmycity-be/models"
	"fixmycity-be/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mergeVoteAttempts bounds the CAS retry loop in MergeVote. Contention on a
// single report is brief, so a handful of retries is plenty.
const mergeVoteAttempts = 5

// ListOptions narrows and pages the report listing.
type ListOptions struct {
	Category string
	Status   string
	Search   string
	Sort     string // newest | oldest | urgency
	Page     int
	Limit    int
}

// ReportRepo owns the reports collection.
type ReportRepo struct {
	col *mongo.Collection
}

func NewReportRepo(db *mongo.Database) *ReportRepo {
	return &ReportRepo{col: db.Collection("reports")}
}

// Create inserts a fresh report: status new, empty vote state, server-side
// timestamps. The stored document, with its assigned ID, comes back.
func (r *ReportRepo) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	report.ID = primitive.NewObjectID()
	report.Status = models.StatusNew
	report.UrgencyScore = 0
	report.UrgencyVotesCount = 0
	report.UrgencyVotes = []models.UrgencyVote{}
	report.CreatedAt = time.Now()

	if _, err := r.col.InsertOne(ctx, report); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return report, nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var report models.Report
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// List returns a page of reports plus the total match count.
func (r *ReportRepo) List(ctx context.Context, opts ListOptions) ([]models.Report, int64, error) {
	filter := buildListFilter(opts)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	findOpts := options.Find().
		SetSort(listSort(opts.Sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("find reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, fmt.Errorf("decode reports: %w", err)
	}
	return reports, total, nil
}

func buildListFilter(opts ListOptions) bson.M {
	filter := bson.M{}
	if opts.Category != "" && opts.Category != "all" {
		filter["category"] = opts.Category
	}
	if opts.Status != "" && opts.Status != "all" {
		filter["status"] = opts.Status
	}
	if opts.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": opts.Search, "$options": "i"}},
			{"description": bson.M{"$regex": opts.Search, "$options": "i"}},
		}
	}
	return filter
}

func listSort(sort string) bson.D {
	switch sort {
	case "oldest":
		return bson.D{{Key: "created_at", Value: 1}}
	case "urgency":
		return bson.D{{Key: "urgency_score", Value: -1}, {Key: "urgency_votes_count", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// UpdateStatus sets an arbitrary status string. The enumeration is open:
// admins have full override authority over the lifecycle.
func (r *ReportRepo) UpdateStatus(ctx context.Context, id, status string) (*models.Report, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
}

// Assign sets the assignee and forces the status to acknowledged.
func (r *ReportRepo) Assign(ctx context.Context, id, assignee string) (*models.Report, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{
			"assigned_to": assignee,
			"status":      models.StatusAcknowledged,
			"updated_at":  time.Now(),
		},
	})
}

func (r *ReportRepo) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*models.Report, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Report
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("update report: %w", err)
	}
	return &updated, nil
}

// Delete removes a report for good. Returns whether it existed.
func (r *ReportRepo) Delete(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, models.ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// MergeVote applies userID's urgency vote with compare-and-swap semantics.
// Each attempt reads the report, recomputes the aggregate, then issues a
// conditional update whose filter pins the observed urgency_votes_count (and,
// on a revote, the observed vote value). A concurrent voter invalidates the
// filter, the update matches nothing, and the loop re-reads. Lost updates
// cannot happen; persistent contention surfaces as an error.
func (r *ReportRepo) MergeVote(ctx context.Context, id, userID string, vote int) (*models.Report, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < mergeVoteAttempts; attempt++ {
		var report models.Report
		err := r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&report)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, models.ErrNotFound
			}
			return nil, fmt.Errorf("find report: %w", err)
		}

		var existing *int
		if v := report.VoteBy(userID); v != nil {
			val := v.Vote
			existing = &val
		}

		agg := services.VoteAggregate{Score: report.UrgencyScore, Count: report.UrgencyVotesCount}
		next, err := services.NextAggregate(agg, existing, vote)
		if err != nil {
			return nil, err
		}

		filter, update := mergeVoteQuery(&report, existing, userID, vote, next)

		var updated models.Report
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err == nil {
			return &updated, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("merge vote: %w", err)
		}
		// CAS miss: another vote landed between the read and the update.
	}

	return nil, fmt.Errorf("merge vote: contention on report %s persisted across %d attempts", id, mergeVoteAttempts)
}

// mergeVoteQuery builds the conditional update for one CAS attempt. The
// filter pins both observed aggregate fields, count AND score: a concurrent
// first-time vote moves the count, a concurrent revote moves the score, so
// either way a racing merge invalidates the filter and this attempt misses
// instead of committing arithmetic from a stale snapshot. The score pin is an
// equality on the exact float the previous merge wrote, so it matches the
// unchanged document bit-for-bit.
func mergeVoteQuery(report *models.Report, existing *int, userID string, vote int, next services.VoteAggregate) (bson.M, bson.M) {
	if existing != nil {
		filter := bson.M{
			"_id":                 report.ID,
			"urgency_votes_count": report.UrgencyVotesCount,
			"urgency_score":       report.UrgencyScore,
			"urgency_votes": bson.M{
				"$elemMatch": bson.M{"user_id": userID, "vote": *existing},
			},
		}
		update := bson.M{
			"$set": bson.M{
				"urgency_score":        next.Score,
				"urgency_votes.$.vote": vote,
				"updated_at":           time.Now(),
			},
		}
		return filter, update
	}

	filter := bson.M{
		"_id":                   report.ID,
		"urgency_votes_count":   report.UrgencyVotesCount,
		"urgency_score":         report.UrgencyScore,
		"urgency_votes.user_id": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$set": bson.M{
			"urgency_score":       next.Score,
			"urgency_votes_count": next.Count,
			"updated_at":          time.Now(),
		},
		"$push": bson.M{
			"urgency_votes": models.UrgencyVote{UserID: userID, Vote: vote},
		},
	}
	return filter, update
}
