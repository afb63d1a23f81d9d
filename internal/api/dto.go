package api

import (
	"time"

	"github.com/czarnick89/workout-tracker/internal/domain"
)

// --- Response Structs ---

// WorkoutResponse lists its exercises without their sets.
type WorkoutResponse struct {
	ID        uint               `json:"id"`
	User      uint               `json:"user"`
	Date      string             `json:"date"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Exercises []ExerciseResponse `json:"exercises"`
}

type ExerciseResponse struct {
	ID        uint      `json:"id"`
	Workout   uint      `json:"workout"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExerciseDetailResponse is an exercise rendered at the top level, which
// includes its sets.
type ExerciseDetailResponse struct {
	ExerciseResponse
	Sets []SetResponse `json:"sets"`
}

type SetResponse struct {
	ID        uint      `json:"id"`
	Exercise  uint      `json:"exercise"`
	SetNumber int       `json:"set_number"`
	Reps      int       `json:"reps"`
	Weight    string    `json:"weight"` // Always two decimal places
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Mappers ---

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	exercises := make([]ExerciseResponse, len(w.Exercises))
	for i := range w.Exercises {
		exercises[i] = MapExerciseToResponse(&w.Exercises[i])
	}
	return WorkoutResponse{
		ID:        w.ID,
		User:      w.UserID,
		Date:      w.Date.Format(domain.DateLayout),
		Name:      w.Name,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		Exercises: exercises,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = MapWorkoutToResponse(&workouts[i])
	}
	return resp
}

func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:        e.ID,
		Workout:   e.WorkoutID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func MapExerciseToDetailResponse(e *domain.Exercise) ExerciseDetailResponse {
	sets := make([]SetResponse, len(e.Sets))
	for i := range e.Sets {
		sets[i] = MapSetToResponse(&e.Sets[i])
	}
	return ExerciseDetailResponse{ExerciseResponse: MapExerciseToResponse(e), Sets: sets}
}

func MapExercisesToDetailResponse(exercises []domain.Exercise) []ExerciseDetailResponse {
	resp := make([]ExerciseDetailResponse, len(exercises))
	for i := range exercises {
		resp[i] = MapExerciseToDetailResponse(&exercises[i])
	}
	return resp
}

func MapSetToResponse(s *domain.Set) SetResponse {
	return SetResponse{
		ID:        s.ID,
		Exercise:  s.ExerciseID,
		SetNumber: s.SetNumber,
		Reps:      s.Reps,
		Weight:    s.Weight.StringFixed(2),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func MapSetsToResponse(sets []domain.Set) []SetResponse {
	resp := make([]SetResponse, len(sets))
	for i := range sets {
		resp[i] = MapSetToResponse(&sets[i])
	}
	return resp
}
