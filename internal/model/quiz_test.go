package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizQuestionValidate(t *testing.T) {
	valid := QuizQuestion{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		edit func(q *QuizQuestion)
	}{
		{"empty question", func(q *QuizQuestion) { q.Question = " " }},
		{"one option", func(q *QuizQuestion) { q.Options = []string{"4"} }},
		{"seven options", func(q *QuizQuestion) { q.Options = []string{"1", "2", "3", "4", "5", "6", "7"} }},
		{"duplicate options", func(q *QuizQuestion) { q.Options = []string{"4", " 4 "} }},
		{"blank option", func(q *QuizQuestion) { q.Options = []string{"4", ""} }},
		{"answer not an option", func(q *QuizQuestion) { q.CorrectAnswer = "5" }},
		{"no answer", func(q *QuizQuestion) { q.CorrectAnswer = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			q.Options = append([]string(nil), valid.Options...)
			tt.edit(&q)
			assert.Error(t, q.Validate())
		})
	}
}

func TestRemoveOptionClearsCorrectAnswer(t *testing.T) {
	q := QuizQuestion{Question: "pick", Options: []string{"a", "b", "c"}, CorrectAnswer: "b"}

	require.NoError(t, q.RemoveOption(0))
	assert.Equal(t, []string{"b", "c"}, q.Options)
	assert.Equal(t, "b", q.CorrectAnswer)

	require.NoError(t, q.RemoveOption(0))
	assert.Equal(t, []string{"c"}, q.Options)
	assert.Empty(t, q.CorrectAnswer)
	assert.Error(t, q.Validate())

	assert.Error(t, q.RemoveOption(5))
}

func TestRenameOptionFollowsCorrectAnswer(t *testing.T) {
	q := QuizQuestion{Question: "pick", Options: []string{"a", "b"}, CorrectAnswer: "a"}
	require.NoError(t, q.RenameOption(0, "alpha"))
	assert.Equal(t, "alpha", q.CorrectAnswer)
	assert.NoError(t, q.Validate())

	assert.Error(t, q.SetCorrectAnswer("zeta"))
	require.NoError(t, q.SetCorrectAnswer("b"))
	assert.Equal(t, "b", q.CorrectAnswer)
}

func TestModuleJSONRoundTripKeepsVariant(t *testing.T) {
	raw := `[
		{"id":"m1","title":"Intro","type":"text","content":"<p>hi</p>"},
		{"id":"m2","title":"Talk","type":"video","content":"https://youtu.be/x","videoType":"embed"},
		{"id":"m3","title":"Upload","type":"video","content":"videos/c1/a.mp4","videoType":"upload"}
	]`
	var modules []Module
	require.NoError(t, json.Unmarshal([]byte(raw), &modules))
	require.Len(t, modules, 3)

	assert.Equal(t, TextContent{HTML: "<p>hi</p>"}, modules[0].Content)
	assert.Equal(t, VideoContent{URL: "https://youtu.be/x", Origin: VideoEmbed}, modules[1].Content)
	assert.Equal(t, ModuleVideo, modules[2].Content.Kind())

	out, err := json.Marshal(modules[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m3","title":"Upload","type":"video","content":"videos/c1/a.mp4","videoType":"upload"}`, string(out))

	var bad Module
	assert.Error(t, json.Unmarshal([]byte(`{"id":"x","type":"slides"}`), &bad))
}

func TestModuleValidate(t *testing.T) {
	assert.NoError(t, NewTextModule("Intro", "<p>x</p>").Validate())
	assert.Error(t, NewTextModule("", "<p>x</p>").Validate())
	assert.Error(t, NewTextModule("Intro", "  ").Validate())
	assert.Error(t, NewVideoModule("Talk", "", VideoEmbed).Validate())
	assert.Error(t, NewVideoModule("Talk", "u", VideoOrigin("cdn")).Validate())
	assert.Error(t, Module{Title: "nothing"}.Validate())
}

func TestCourseStoredObjects(t *testing.T) {
	c := Course{
		Modules: []Module{
			NewTextModule("a", "x"),
			NewVideoModule("b", "https://youtu.be/x", VideoEmbed),
			NewVideoModule("c", "https://cdn/videos/c.mp4", VideoUpload),
		},
		TextbookURL: "https://cdn/textbooks/t.pdf",
	}
	assert.Equal(t, []string{"https://cdn/videos/c.mp4", "https://cdn/textbooks/t.pdf"}, c.StoredObjects())
}
