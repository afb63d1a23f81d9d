package validation

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/reconcile"
)

const (
	nameMaxLength   = 100
	weightMaxDigits = 5
	weightPlaces    = 2
)

// WorkoutInput is a validated workout body.
type WorkoutInput struct {
	Patch domain.WorkoutPatch
	// Exercises is only meaningful when HasExercises is set. An absent
	// exercises key leaves the children alone; an empty list removes them.
	Exercises    []reconcile.Item[domain.ExercisePatch]
	HasExercises bool
}

// ExerciseInput is a validated exercise body.
type ExerciseInput struct {
	Patch   domain.ExercisePatch
	Sets    []reconcile.Item[domain.SetPatch]
	HasSets bool
}

// ValidateWorkout checks a workout body. With partial unset every required
// field must be present; with partial set only the given fields are checked.
func ValidateWorkout(p WorkoutPayload, partial bool) (WorkoutInput, Errors) {
	errs := Errors{}
	var in WorkoutInput

	switch {
	case present(p.Date):
		if d, ok := dateField(errs, "date", p.Date); ok {
			in.Patch.Date = &d
		}
	case !partial:
		errs.Add("date", MsgRequired)
	}

	if present(p.Name) {
		if s, ok := stringField(errs, "name", p.Name); ok && check(errs, "name", s, maxLength(nameMaxLength)) {
			in.Patch.Name = &s
		}
	}

	if present(p.Notes) {
		if s, ok := stringField(errs, "notes", p.Notes); ok {
			in.Patch.Notes = &s
		}
	}

	if present(p.Exercises) {
		if raws, ok := listField(errs, "exercises", p.Exercises); ok {
			in.HasExercises = true
			in.Exercises = make([]reconcile.Item[domain.ExercisePatch], 0, len(raws))
			for i, raw := range raws {
				in.Exercises = append(in.Exercises, exerciseItem(errs, i, raw))
			}
		}
	}

	return in, errs
}

func exerciseItem(errs Errors, index int, raw json.RawMessage) reconcile.Item[domain.ExercisePatch] {
	var item reconcile.Item[domain.ExercisePatch]
	var p ExerciseItemPayload
	if !objectItem(errs, ItemField("exercises", index, NonFieldErrors), raw, &p) {
		return item
	}

	item.ID, _ = tagField(errs, ItemField("exercises", index, "id"), p.ID)
	if present(p.Name) {
		key := ItemField("exercises", index, "name")
		if s, ok := stringField(errs, key, p.Name); ok && check(errs, key, s, exerciseNameRules()...) {
			item.Patch.Name = &s
		}
	}
	return item
}

// ValidateExercise checks an exercise body. The workout reference is only
// checked for shape here; resolving it is left to the caller.
func ValidateExercise(p ExercisePayload, partial bool) (ExerciseInput, Errors) {
	errs := Errors{}
	var in ExerciseInput

	switch {
	case present(p.Workout):
		if id, ok := pkField(errs, "workout", p.Workout); ok {
			in.Patch.WorkoutID = &id
		}
	case !partial:
		errs.Add("workout", MsgRequired)
	}

	switch {
	case present(p.Name):
		if s, ok := stringField(errs, "name", p.Name); ok && check(errs, "name", s, exerciseNameRules()...) {
			in.Patch.Name = &s
		}
	case !partial:
		errs.Add("name", MsgRequired)
	}

	if present(p.Sets) {
		if raws, ok := listField(errs, "sets", p.Sets); ok {
			in.HasSets = true
			in.Sets = make([]reconcile.Item[domain.SetPatch], 0, len(raws))
			for i, raw := range raws {
				in.Sets = append(in.Sets, setItem(errs, i, raw))
			}
		}
	}

	return in, errs
}

func exerciseNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgBlank),
		maxLength(nameMaxLength),
	}
}

func setItem(errs Errors, index int, raw json.RawMessage) reconcile.Item[domain.SetPatch] {
	var item reconcile.Item[domain.SetPatch]
	var p SetItemPayload
	if !objectItem(errs, ItemField("sets", index, NonFieldErrors), raw, &p) {
		return item
	}

	item.ID, _ = tagField(errs, ItemField("sets", index, "id"), p.ID)
	item.Patch = setValues(errs, func(field string) string {
		return ItemField("sets", index, field)
	}, p.SetNumber, p.Reps, p.Weight, true)
	return item
}

// ValidateSet checks a set body. The exercise reference is only checked for
// shape here; resolving it is left to the caller.
func ValidateSet(p SetPayload, partial bool) (domain.SetPatch, Errors) {
	errs := Errors{}

	patch := setValues(errs, func(field string) string { return field }, p.SetNumber, p.Reps, p.Weight, partial)

	switch {
	case present(p.Exercise):
		if id, ok := pkField(errs, "exercise", p.Exercise); ok {
			patch.ExerciseID = &id
		}
	case !partial:
		errs.Add("exercise", MsgRequired)
	}

	return patch, errs
}

func setValues(errs Errors, key func(string) string, setNumber, reps, weight json.RawMessage, partial bool) domain.SetPatch {
	var patch domain.SetPatch

	switch {
	case present(setNumber):
		k := key("set_number")
		if v, ok := intField(errs, k, setNumber); ok && check(errs, k, v, nonZero(1), minValue(1), maxValue(maxInt)) {
			patch.SetNumber = &v
		}
	case !partial:
		errs.Add(key("set_number"), MsgRequired)
	}

	switch {
	case present(reps):
		k := key("reps")
		if v, ok := intField(errs, k, reps); ok && check(errs, k, v, minValue(0), maxValue(maxInt)) {
			patch.Reps = &v
		}
	case !partial:
		errs.Add(key("reps"), MsgRequired)
	}

	switch {
	case present(weight):
		k := key("weight")
		if v, ok := decimalField(errs, k, weight); ok && check(errs, k, v, decimalPrecision(weightMaxDigits, weightPlaces), nonNegativeDecimal()) {
			v = v.Round(weightPlaces)
			patch.Weight = &v
		}
	case !partial:
		errs.Add(key("weight"), MsgRequired)
	}

	return patch
}

// RequireExerciseCreates flags nested exercises that would be created
// without a name.
func RequireExerciseCreates(errs Errors, creates []reconcile.Create[domain.ExercisePatch]) {
	for _, c := range creates {
		key := ItemField("exercises", c.Index, "name")
		if c.Patch.Name == nil && !errs.Has(key) {
			errs.Add(key, MsgRequired)
		}
	}
}

// RequireSetCreates flags nested sets that would be created without every
// required value.
func RequireSetCreates(errs Errors, creates []reconcile.Create[domain.SetPatch]) {
	for _, c := range creates {
		missing := map[string]bool{
			"set_number": c.Patch.SetNumber == nil,
			"reps":       c.Patch.Reps == nil,
			"weight":     c.Patch.Weight == nil,
		}
		for _, field := range []string{"set_number", "reps", "weight"} {
			key := ItemField("sets", c.Index, field)
			if missing[field] && !errs.Has(key) {
				errs.Add(key, MsgRequired)
			}
		}
	}
}
