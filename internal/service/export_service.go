package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/storage"
)

// Export points at an uploaded workout snapshot.
type Export struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// ExportService writes JSON snapshots of whole workout trees to object storage.
type ExportService interface {
	ExportWorkout(ctx context.Context, userID, workoutID uint) (*Export, error)
}

// exportService implements the ExportService interface.
type exportService struct {
	workoutRepo repository.WorkoutRepository
	storage     storage.FileStorage
	urlExpiry   time.Duration
	logger      hclog.Logger
}

// NewExportService creates a new instance of exportService.
func NewExportService(workoutRepo repository.WorkoutRepository, fileStorage storage.FileStorage, urlExpiry time.Duration, logger hclog.Logger) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		workoutRepo: workoutRepo,
		storage:     fileStorage,
		urlExpiry:   urlExpiry,
		logger:      logger.Named("export"),
	}
}

// Snapshot documents use the same field names as the API.
type (
	setSnapshot struct {
		ID        uint   `json:"id"`
		SetNumber int    `json:"set_number"`
		Reps      int    `json:"reps"`
		Weight    string `json:"weight"`
	}
	exerciseSnapshot struct {
		ID   uint          `json:"id"`
		Name string        `json:"name"`
		Sets []setSnapshot `json:"sets"`
	}
	workoutSnapshot struct {
		ID         uint               `json:"id"`
		Date       string             `json:"date"`
		Name       string             `json:"name"`
		Notes      string             `json:"notes"`
		Exercises  []exerciseSnapshot `json:"exercises"`
		ExportedAt time.Time          `json:"exported_at"`
	}
)

func snapshot(w *domain.Workout, now time.Time) workoutSnapshot {
	doc := workoutSnapshot{
		ID:         w.ID,
		Date:       w.Date.Format(domain.DateLayout),
		Name:       w.Name,
		Notes:      w.Notes,
		Exercises:  make([]exerciseSnapshot, 0, len(w.Exercises)),
		ExportedAt: now,
	}
	for _, e := range w.Exercises {
		ex := exerciseSnapshot{ID: e.ID, Name: e.Name, Sets: make([]setSnapshot, 0, len(e.Sets))}
		for _, s := range e.Sets {
			ex.Sets = append(ex.Sets, setSnapshot{
				ID:        s.ID,
				SetNumber: s.SetNumber,
				Reps:      s.Reps,
				Weight:    s.Weight.StringFixed(2),
			})
		}
		doc.Exercises = append(doc.Exercises, ex)
	}
	return doc
}

func (s *exportService) ExportWorkout(ctx context.Context, userID, workoutID uint) (*Export, error) {
	w, err := s.workoutRepo.GetTree(ctx, workoutID, userID)
	if err != nil {
		return nil, notFound(err)
	}

	now := time.Now().UTC()
	body, err := json.Marshal(snapshot(w, now))
	if err != nil {
		return nil, fmt.Errorf("encode workout snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/%d/workouts/%d/%s.json", userID, workoutID, uuid.NewString())
	if err := s.storage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, err
	}

	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		// Nobody can reach the object without a URL.
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove unreachable export", "key", key, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("workout exported", "workout_id", workoutID, "user_id", userID, "key", key)
	return &Export{Key: key, URL: url, ExpiresAt: now.Add(s.urlExpiry)}, nil
}
