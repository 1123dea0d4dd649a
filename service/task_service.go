package service

import (
	"context"
	"errors"
	"log"
	"time"

	"porthound/database"
	"porthound/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskQueueKey is the Redis list holding pending scan task IDs.
const TaskQueueKey = "task:queue:port_scan"

type TaskService struct{}

func NewTaskService() *TaskService {
	return &TaskService{}
}

// CreateTask creates a new task and enqueues it for execution
func (s *TaskService) CreateTask(task *models.Task) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionTasks)

	task.ID = primitive.NewObjectID()
	task.Status = models.TaskStatusPending
	task.Progress = 0
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()

	if _, err := collection.InsertOne(ctx, task); err != nil {
		return errors.New("failed to create task")
	}

	s.enqueueTask(task)

	return nil
}

// GetTaskByID retrieves task by ID
func (s *TaskService) GetTaskByID(taskID string) (*models.Task, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, errors.New("invalid task ID")
	}

	collection := database.GetCollection(models.CollectionTasks)

	var task models.Task
	if err := collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&task); err != nil {
		return nil, errors.New("task not found")
	}

	return &task, nil
}

// ListTasks lists tasks with filtering and pagination
func (s *TaskService) ListTasks(status string, page, pageSize int) ([]*models.Task, int64, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionTasks)

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.New("failed to count tasks")
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.New("failed to list tasks")
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, 0, errors.New("failed to decode tasks")
	}

	return tasks, total, nil
}

// UpdateTask updates a task
func (s *TaskService) UpdateTask(taskID string, updates map[string]interface{}) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return errors.New("invalid task ID")
	}

	collection := database.GetCollection(models.CollectionTasks)

	updates["updated_at"] = time.Now()
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": updates}); err != nil {
		return errors.New("failed to update task")
	}

	return nil
}

// DeleteTask deletes a task that is not running
func (s *TaskService) DeleteTask(taskID string) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return errors.New("invalid task ID")
	}

	task, _ := s.GetTaskByID(taskID)
	if task != nil && task.Status == models.TaskStatusRunning {
		return errors.New("cannot delete a running task")
	}

	collection := database.GetCollection(models.CollectionTasks)

	if _, err := collection.DeleteOne(ctx, bson.M{"_id": objID}); err != nil {
		return errors.New("failed to delete task")
	}

	return nil
}

// CancelTask cancels a pending or running task. A running task's scan
// context is cancelled; already-probed ports keep their results and the
// remainder is recorded as not scanned.
func (s *TaskService) CancelTask(taskID string) error {
	task, err := s.GetTaskByID(taskID)
	if err != nil {
		return err
	}

	if task.Status == models.TaskStatusCompleted {
		return errors.New("completed task cannot be cancelled")
	}

	cancelRunningScan(taskID)

	return s.UpdateTask(taskID, map[string]interface{}{
		"status": models.TaskStatusCancelled,
	})
}

// UpdateTaskProgress updates task progress and stats
func (s *TaskService) UpdateTaskProgress(taskID string, progress int, stats models.TaskStats) error {
	return s.UpdateTask(taskID, map[string]interface{}{
		"progress": progress,
		"stats":    stats,
	})
}

// FailTask marks a task as failed
func (s *TaskService) FailTask(taskID string, errorMsg string) error {
	return s.UpdateTask(taskID, map[string]interface{}{
		"status":     models.TaskStatusFailed,
		"last_error": errorMsg,
	})
}

// enqueueTask adds task to the Redis queue
func (s *TaskService) enqueueTask(task *models.Task) {
	ctx := context.Background()
	rdb := database.GetRedis()

	log.Printf("[TaskService] Enqueueing task %s to queue: %s", task.ID.Hex(), TaskQueueKey)
	rdb.RPush(ctx, TaskQueueKey, task.ID.Hex())
}

// DequeueTask gets the next task from the queue, nil when empty
func (s *TaskService) DequeueTask() (*models.Task, error) {
	ctx := context.Background()
	rdb := database.GetRedis()

	result, err := rdb.LPop(ctx, TaskQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s.GetTaskByID(result)
}
