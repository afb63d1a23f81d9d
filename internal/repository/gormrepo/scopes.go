package gormrepo

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/czarnick89/workout-tracker/internal/repository"
)

func paginate(p repository.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Offset > 0 {
			db = db.Offset(p.Offset)
		}
		if p.Limit > 0 {
			db = db.Limit(p.Limit)
		}
		return db
	}
}

func orderByID(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id")
	}
}

// Ownership scopes. Exercises and sets carry no owner column of their own,
// so their scopes join up to the workout.

func ownedWorkouts(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workouts.user_id = ?", userID)
	}
}

func ownedExercises(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN workouts ON workouts.id = exercises.workout_id").
			Where("workouts.user_id = ?", userID)
	}
}

func ownedSets(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN exercises ON exercises.id = sets.exercise_id").
			Joins("JOIN workouts ON workouts.id = exercises.workout_id").
			Where("workouts.user_id = ?", userID)
	}
}

var workoutOrderColumns = map[string]string{
	"date":       "workouts.date",
	"name":       "workouts.name",
	"created_at": "workouts.created_at",
}

// workoutOrder turns an ordering key such as "-date" into an ORDER BY
// clause. Unknown keys fall back to newest date first. Ties are broken by
// id in the same direction.
func workoutOrder(ordering string) string {
	dir := "ASC"
	key := ordering
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	col, ok := workoutOrderColumns[key]
	if !ok {
		col, dir = workoutOrderColumns["date"], "DESC"
	}
	return col + " " + dir + ", workouts.id " + dir
}

// lockForUpdate takes row locks on the selected rows. SQLite has no
// FOR UPDATE; its writers are serialized by the database lock instead.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == DriverPostgres {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// updateRow writes the named columns of model, which must carry its
// primary key, only while the row still satisfies query. A row that was
// deleted or moved away reports ErrNotFound rather than being re-inserted
// the way Save would.
func updateRow(tx *gorm.DB, model interface{}, columns []string, query string, args ...interface{}) error {
	res := tx.Model(model).Where(query, args...).Select(columns).Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
