package quiz

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolci/StudyBuddy/backend/models"
)

type fakeQuestionSource struct {
	byTopic map[uint][]models.Question
}

func (f *fakeQuestionSource) ListByTopic(topicID uint) ([]models.Question, error) {
	// Copy so the generator shuffling in place cannot corrupt the fixture.
	pool := f.byTopic[topicID]
	out := make([]models.Question, len(pool))
	copy(out, pool)
	return out, nil
}

func testQuestion(id uint, text string) models.Question {
	q := models.Question{
		Text:          text,
		CorrectAnswer: "correct " + text,
		WrongAnswer1:  "wrong1 " + text,
		WrongAnswer2:  "wrong2 " + text,
		WrongAnswer3:  "wrong3 " + text,
		TopicID:       1,
	}
	q.ID = id
	return q
}

func seededGenerator(src QuestionSource) *Generator {
	g := NewGenerator(src)
	g.Rand = rand.New(rand.NewSource(42))
	return g
}

func tenQuestionTopic() *fakeQuestionSource {
	src := &fakeQuestionSource{byTopic: map[uint][]models.Question{}}
	for i := uint(1); i <= 10; i++ {
		src.byTopic[1] = append(src.byTopic[1], testQuestion(i, fmt.Sprintf("q%d", i)))
	}
	return src
}

func TestGeneratePicksDistinctQuestions(t *testing.T) {
	g := seededGenerator(tenQuestionTopic())

	out, err := g.Generate(1, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)

	seen := make(map[uint]bool)
	for _, q := range out {
		assert.False(t, seen[q.QuestionID], "question %d picked twice", q.QuestionID)
		seen[q.QuestionID] = true

		// Each question carries 1-4 unique non-empty options including the
		// correct answer.
		assert.GreaterOrEqual(t, len(q.Options), 1)
		assert.LessOrEqual(t, len(q.Options), 4)
		assert.Contains(t, q.Options, q.CorrectAnswer)

		unique := make(map[string]bool)
		for _, o := range q.Options {
			assert.NotEmpty(t, o)
			assert.False(t, unique[o], "duplicate option %q", o)
			unique[o] = true
		}
	}
}

func TestGenerateTruncatesToAvailable(t *testing.T) {
	g := seededGenerator(tenQuestionTopic())

	out, err := g.Generate(1, 25)
	require.NoError(t, err)
	assert.Len(t, out, 10)

	// Asking for everything returns a permutation of the pool.
	ids := make(map[uint]bool)
	for _, q := range out {
		ids[q.QuestionID] = true
	}
	assert.Len(t, ids, 10)
}

func TestGenerateEmptyTopic(t *testing.T) {
	g := seededGenerator(&fakeQuestionSource{byTopic: map[uint][]models.Question{}})

	out, err := g.Generate(99, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateClampsCount(t *testing.T) {
	g := seededGenerator(tenQuestionTopic())

	out, err := g.Generate(1, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestBuildOptionsDeduplicates(t *testing.T) {
	q := models.Question{
		Text:          "capital of France?",
		CorrectAnswer: "Paris",
		WrongAnswer1:  "Paris", // duplicate of the correct answer
		WrongAnswer2:  "Lyon",
		WrongAnswer3:  "  ", // blank, dropped
	}

	g := seededGenerator(&fakeQuestionSource{})
	opts := g.buildOptions(q)

	assert.ElementsMatch(t, []string{"Paris", "Lyon"}, opts)
}

func TestGenerateConcurrent(t *testing.T) {
	// One Generator is shared by all request handlers; parallel Generate
	// calls must not corrupt the shared Rand (run with -race).
	g := NewGenerator(tenQuestionTopic())

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				out, err := g.Generate(1, 3)
				if err != nil {
					errs <- err
					return
				}
				if len(out) != 3 {
					errs <- fmt.Errorf("got %d questions, want 3", len(out))
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestShuffleIsUniformish(t *testing.T) {
	// A two-question pool shuffled many times should see both orders; the
	// old order-by-random-key approach could go long streaks without.
	src := &fakeQuestionSource{byTopic: map[uint][]models.Question{
		1: {testQuestion(1, "a"), testQuestion(2, "b")},
	}}
	g := seededGenerator(src)

	firsts := make(map[uint]int)
	for i := 0; i < 200; i++ {
		out, err := g.Generate(1, 2)
		require.NoError(t, err)
		firsts[out[0].QuestionID]++
	}

	assert.Greater(t, firsts[1], 50)
	assert.Greater(t, firsts[2], 50)
}
