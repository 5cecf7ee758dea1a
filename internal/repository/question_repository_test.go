package repository

import (
	"fmt"
	"strings"
	"testing"

	"course_exam_backend/internal/model"
	"course_exam_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedQuestion(t *testing.T, db *gorm.DB, moocID uint, correctLabels ...string) uint {
	t.Helper()
	q := model.Question{MoocID: moocID, Stem: "stem"}
	require.NoError(t, db.Create(&q).Error)

	correct := make(map[string]bool, len(correctLabels))
	for _, l := range correctLabels {
		correct[l] = true
	}
	for _, label := range []string{"A", "B", "C", "D"} {
		opt := model.QuestionOption{QuestionID: q.ID, Label: label, Content: label, IsCorrect: correct[label]}
		require.NoError(t, db.Create(&opt).Error)
	}
	return q.ID
}

func TestAnswerKeys(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuestionRepository(db)

	single := seedQuestion(t, db, 1, "B")
	multi := seedQuestion(t, db, 1, "A", "C")
	none := seedQuestion(t, db, 1)

	keys, err := repo.AnswerKeys(db, []uint{single, multi, none})
	require.NoError(t, err)

	// 只有唯一正确选项的题进入答案表
	assert.Equal(t, "B", keys[single])
	_, hasMulti := keys[multi]
	assert.False(t, hasMulti)
	_, hasNone := keys[none]
	assert.False(t, hasNone)
}

func TestAnswerKeysEmptyInput(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuestionRepository(db)

	keys, err := repo.AnswerKeys(db, nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFindByMoocPreloadsOptions(t *testing.T) {
	db := openTestDB(t)
	repo := NewQuestionRepository(db)

	seedQuestion(t, db, 7, "A")
	seedQuestion(t, db, 7, "B")
	seedQuestion(t, db, 8, "A")

	questions, err := repo.FindByMooc(7)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Len(t, q.Options, 4)
	}
}
