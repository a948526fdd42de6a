// Package quiz builds self-test quizzes from a topic's question pool.
package quiz

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/models"
)

// Question is one quiz entry with its options already shuffled. The correct
// answer is included so the caller can grade client answers.
type Question struct {
	QuestionID    uint     `json:"questionId"`
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
}

// QuestionSource fetches the full question pool for a topic.
type QuestionSource interface {
	ListByTopic(topicID uint) ([]models.Question, error)
}

// Generator picks and shuffles quiz questions. The shuffle is a uniform
// permutation (rand.Shuffle), not an order-by-random-key sort. One Generator
// serves all requests; rand.Rand is not goroutine-safe, so every use of Rand
// goes through the mutex.
type Generator struct {
	Source QuestionSource
	Rand   *rand.Rand

	mu sync.Mutex
}

func NewGenerator(src QuestionSource) *Generator {
	return &Generator{
		Source: src,
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns up to count questions from the topic, each with an
// independently shuffled option list. A topic with no questions yields an
// empty slice, not an error.
func (g *Generator) Generate(topicID uint, count int) ([]Question, error) {
	pool, err := g.Source.ListByTopic(topicID)
	if err != nil {
		return nil, err
	}

	if count < 1 {
		count = 1
	}

	g.shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count > len(pool) {
		count = len(pool)
	}

	out := make([]Question, 0, count)
	for _, q := range pool[:count] {
		out = append(out, Question{
			QuestionID:    q.ID,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Options:       g.buildOptions(q),
		})
	}
	return out, nil
}

// buildOptions assembles the correct answer plus the non-empty wrong answers,
// deduplicated keeping first occurrence, then shuffles them.
func (g *Generator) buildOptions(q models.Question) []string {
	candidates := []string{q.CorrectAnswer, q.WrongAnswer1, q.WrongAnswer2, q.WrongAnswer3}

	seen := make(map[string]struct{}, len(candidates))
	opts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		opts = append(opts, c)
	}

	g.shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	return opts
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	g.Rand.Shuffle(n, swap)
	g.mu.Unlock()
}

// GormQuestionSource reads questions from the database.
type GormQuestionSource struct {
	DB *gorm.DB
}

func (s *GormQuestionSource) ListByTopic(topicID uint) ([]models.Question, error) {
	var questions []models.Question
	err := s.DB.Where("topic_id = ?", topicID).Find(&questions).Error
	return questions, err
}
