package service

import (
	"errors"
	"time"

	"porthound/database"
	"porthound/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResultService struct{}

func NewResultService() *ResultService {
	return &ResultService{}
}

// SaveReport persists a scan report and returns the stored document.
// The report itself stays free of identity and timing; both are added
// here so repeated scans with equal results stay comparable.
func (s *ResultService) SaveReport(report *models.ScanReport, taskID primitive.ObjectID, startedAt, endedAt time.Time) (*models.ReportDocument, error) {
	ctx, cancel := database.NewLongContext()
	defer cancel()

	doc := &models.ReportDocument{
		ID:        primitive.NewObjectID(),
		ScanID:    uuid.New().String(),
		TaskID:    taskID,
		Report:    *report,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		CreatedAt: time.Now(),
	}

	collection := database.GetCollection(models.CollectionReports)
	if _, err := collection.InsertOne(ctx, doc); err != nil {
		return nil, errors.New("failed to save scan report")
	}

	return doc, nil
}

// GetReportByScanID retrieves a report document by its scan UUID
func (s *ResultService) GetReportByScanID(scanID string) (*models.ReportDocument, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionReports)

	var doc models.ReportDocument
	if err := collection.FindOne(ctx, bson.M{"scan_id": scanID}).Decode(&doc); err != nil {
		return nil, errors.New("report not found")
	}

	return &doc, nil
}

// GetReportByTaskID retrieves the latest report for a task
func (s *ResultService) GetReportByTaskID(taskID string) (*models.ReportDocument, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, errors.New("invalid task ID")
	}

	collection := database.GetCollection(models.CollectionReports)

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc models.ReportDocument
	if err := collection.FindOne(ctx, bson.M{"task_id": objID}, opts).Decode(&doc); err != nil {
		return nil, errors.New("report not found")
	}

	return &doc, nil
}

// ListReports lists stored reports, newest first
func (s *ResultService) ListReports(page, pageSize int) ([]*models.ReportDocument, int64, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionReports)

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.New("failed to count reports")
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, errors.New("failed to list reports")
	}
	defer cursor.Close(ctx)

	var docs []*models.ReportDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, errors.New("failed to decode reports")
	}

	return docs, total, nil
}
