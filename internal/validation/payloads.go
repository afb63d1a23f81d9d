package validation

import "encoding/json"

// Payload fields stay raw so an absent key, an explicit null and a value
// of the wrong type can all be told apart and reported together.

// WorkoutPayload is the body of a workout create or update.
type WorkoutPayload struct {
	Date      json.RawMessage `json:"date"`
	Name      json.RawMessage `json:"name"`
	Notes     json.RawMessage `json:"notes"`
	Exercises json.RawMessage `json:"exercises"`
}

// ExerciseItemPayload is one entry of a workout's nested exercises list.
type ExerciseItemPayload struct {
	ID   json.RawMessage `json:"id"`
	Name json.RawMessage `json:"name"`
}

// ExercisePayload is the body of an exercise create or update.
type ExercisePayload struct {
	Workout json.RawMessage `json:"workout"`
	Name    json.RawMessage `json:"name"`
	Sets    json.RawMessage `json:"sets"`
}

// SetItemPayload is one entry of an exercise's nested sets list.
type SetItemPayload struct {
	ID        json.RawMessage `json:"id"`
	SetNumber json.RawMessage `json:"set_number"`
	Reps      json.RawMessage `json:"reps"`
	Weight    json.RawMessage `json:"weight"`
}

// SetPayload is the body of a set create or update.
type SetPayload struct {
	Exercise  json.RawMessage `json:"exercise"`
	SetNumber json.RawMessage `json:"set_number"`
	Reps      json.RawMessage `json:"reps"`
	Weight    json.RawMessage `json:"weight"`
}
