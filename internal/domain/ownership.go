package domain

// The ownership chain runs Set → Exercise → Workout → User. These helpers
// answer "does principal own this entity" from whatever part of the chain
// is loaded; a missing link counts as not owned.

// WorkoutOwnedBy reports whether w belongs to userID.
func WorkoutOwnedBy(w *Workout, userID uint) bool {
	return w != nil && userID != 0 && w.UserID == userID
}

// ExerciseOwnedBy reports whether e's workout belongs to userID.
// e.Workout must be loaded.
func ExerciseOwnedBy(e *Exercise, userID uint) bool {
	return e != nil && WorkoutOwnedBy(e.Workout, userID)
}

// SetOwnedBy reports whether s's exercise chain belongs to userID.
// s.Exercise.Workout must be loaded.
func SetOwnedBy(s *Set, userID uint) bool {
	return s != nil && ExerciseOwnedBy(s.Exercise, userID)
}
