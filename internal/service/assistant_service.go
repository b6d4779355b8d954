package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/llm"
	"corp_edu_backend/internal/model"
)

const (
	maxSourceTextRunes = 30000
	maxChatTurns       = 20
	maxTopics          = 5
	quizQuestionCount  = 3
	quizOptionCount    = 4
)

const assistantPersona = "You are a helpful and knowledgeable assistant for a corporate e-learning platform. " +
	"Be friendly and professional, and give clear explanations. " +
	"Do not answer questions outside the scope of professional development or the provided course context."

// AssistantService 内容助手；生成的草稿只返回给调用方，不落库
type AssistantService struct {
	provider    llm.Provider
	cfg         config.AIConfig
	courses     courseStore
	discussions discussionStore
}

func NewAssistantService(provider llm.Provider, cfg config.AIConfig, courses courseStore, discussions discussionStore) *AssistantService {
	return &AssistantService{provider: provider, cfg: cfg, courses: courses, discussions: discussions}
}

// CourseDraft 生成的课程描述和文本模块
type CourseDraft struct {
	Description string         `json:"description"`
	Modules     []model.Module `json:"modules"`
}

type ChatTurn struct {
	Role string `json:"role" validate:"oneof=user model assistant"`
	Text string `json:"text" validate:"notblank"`
}

type ChatRequest struct {
	History  []ChatTurn `json:"history" validate:"required,min=1,dive"`
	CourseID string     `json:"courseId"`
}

type QuizRequest struct {
	CourseID string `json:"courseId"`
	Content  string `json:"content"`
}

type draftOutput struct {
	Description string `json:"description"`
	Modules     []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"modules"`
}

func draftSchema(minModules, maxModules int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("course_draft_%d_%d", minModules, maxModules),
		Description: "A course description and its text modules.",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"description": map[string]any{
					"type":        "string",
					"description": "A comprehensive overview of the course topic.",
				},
				"modules": map[string]any{
					"type":        "array",
					"description": "The modules of the course.",
					"minItems":    minModules,
					"maxItems":    maxModules,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":   map[string]any{"type": "string", "description": "The title of the module."},
							"content": map[string]any{"type": "string", "description": "The HTML content of the module."},
						},
						"required":             []any{"title", "content"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []any{"description", "modules"},
			"additionalProperties": false,
		},
	}
}

var quizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "Multiple-choice quiz questions.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": quizQuestionCount,
				"maxItems": quizQuestionCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string", "description": "The question text."},
						"options": map[string]any{
							"type":        "array",
							"description": "The possible answers.",
							"items":       map[string]any{"type": "string"},
							"minItems":    quizOptionCount,
							"maxItems":    quizOptionCount,
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The correct answer, which must be one of the options.",
						},
					},
					"required":             []any{"question", "options", "correctAnswer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

var topicsSchema = &llm.Schema{
	Name:        "discussion_topics",
	Description: "The main discussion topics.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"maxItems": maxTopics,
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}

// DraftCourse 根据主题生成课程描述和 3 个模块
func (s *AssistantService) DraftCourse(ctx context.Context, topic string) (*CourseDraft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperr.Validation("topic is required")
	}
	prompt := fmt.Sprintf(`Generate course content for a corporate e-learning platform. The topic is %q.
The content should be professional, informative and suitable for employee professional development.
Provide a course description and 3 modules. Each module should have a title and detailed content.
Format the module content using simple HTML tags like <p>, <strong>, <ul> and <li>.`, topic)

	return s.draft(llm.WithTask(ctx, "course_draft"), prompt, "", 3, 3)
}

// DraftCourseFromText 根据教材文本生成 3~5 个模块，原文超过上限的部分被截掉
func (s *AssistantService) DraftCourseFromText(ctx context.Context, text string) (*CourseDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("source text is required")
	}
	text = truncateRunes(text, maxSourceTextRunes)
	prompt := `You are an expert instructional designer.
Based on the following textbook content, create a comprehensive e-learning course for employees.
Write a concise and engaging description summarizing the key learnings, and 3-5 modules.
Each module has a title and content summarizing a key topic from the textbook, formatted with simple HTML (<p>, <strong>, <ul>, <li>).

Textbook Content:
---
` + text + `
---`

	return s.draft(llm.WithTask(ctx, "course_from_text"), prompt, s.cfg.LongModel, 3, 5)
}

func (s *AssistantService) draft(ctx context.Context, prompt, modelName string, minModules, maxModules int) (*CourseDraft, error) {
	var out draftOutput
	if err := s.generateJSON(ctx, prompt, modelName, draftSchema(minModules, maxModules), &out); err != nil {
		return nil, err
	}
	if len(out.Modules) < minModules || len(out.Modules) > maxModules {
		return nil, invalidOutput("expected %d-%d modules, got %d", minModules, maxModules, len(out.Modules))
	}
	draft := &CourseDraft{Description: out.Description, Modules: make([]model.Module, 0, len(out.Modules))}
	for _, m := range out.Modules {
		module := model.NewTextModule(strings.TrimSpace(m.Title), m.Content)
		if err := module.Validate(); err != nil {
			return nil, invalidOutput("module: %v", err)
		}
		draft.Modules = append(draft.Modules, module)
	}
	return draft, nil
}

// GenerateQuiz 生成 3 道 4 选项的单选题；指定课程时使用课程的文本模块
func (s *AssistantService) GenerateQuiz(ctx context.Context, req QuizRequest) ([]model.QuizQuestion, error) {
	content := req.Content
	if req.CourseID != "" {
		course, err := s.courses.FindByID(ctx, req.CourseID)
		if err != nil {
			return nil, err
		}
		content = course.AllText()
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("course content is required to generate a quiz")
	}

	prompt := `Based on the following course content, generate a quiz with 3 multiple-choice questions.
Each question should have 4 options and one correct answer.
The questions should test understanding of the key concepts in the content.

Course Content:
---
` + truncateRunes(content, maxSourceTextRunes) + `
---`

	var out struct {
		Questions []model.QuizQuestion `json:"questions"`
	}
	if err := s.generateJSON(llm.WithTask(ctx, "quiz"), prompt, "", quizSchema, &out); err != nil {
		return nil, err
	}
	for i := range out.Questions {
		q := &out.Questions[i]
		q.ID = model.GenerateUUID()
		if err := q.Validate(); err != nil {
			return nil, invalidOutput("question %d: %v", i+1, err)
		}
	}
	return out.Questions, nil
}

// Chat 多轮对话，指定课程时把课程信息放进系统提示
func (s *AssistantService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}
	history := req.History
	if len(history) > maxChatTurns {
		history = history[len(history)-maxChatTurns:]
	}
	if history[len(history)-1].Role != "user" {
		return "", apperr.Validation("the last message must come from the user")
	}

	system := assistantPersona
	if req.CourseID != "" {
		course, err := s.courses.FindByID(ctx, req.CourseID)
		if err != nil {
			return "", err
		}
		system += fmt.Sprintf("\n\nThe user is currently viewing the course %q. Course description: %q. Tailor your answers to this course if possible.",
			course.Title, course.Description)
	}

	messages := make([]llm.Message, 0, len(history))
	for _, t := range history {
		role := llm.RoleUser
		if t.Role != "user" {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}

	ctx, cancel := context.WithTimeout(llm.WithTask(ctx, "chat"), llm.Timeout(s.cfg))
	defer cancel()
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    messages,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// AnalyzeDiscussions 汇总所有课程讨论，提取最多 5 个主题；没有讨论时不调用模型
func (s *AssistantService) AnalyzeDiscussions(ctx context.Context) ([]string, error) {
	ids, err := s.courses.IDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	posts, err := s.discussions.ListByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, p := range posts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		b.WriteString(p.AuthorName)
		b.WriteString(": ")
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return []string{}, nil
	}

	prompt := `Analyze the following discussion forum comments from a corporate e-learning platform.
Identify and list up to 5 main topics, keywords or questions that people frequently talk about.
Ignore pleasantries, greetings and generic comments. Focus on the core subject matter.

Discussion Text:
---
` + truncateRunes(b.String(), maxSourceTextRunes) + `
---`

	var out struct {
		Topics []string `json:"topics"`
	}
	if err := s.generateJSON(llm.WithTask(ctx, "topic_analysis"), prompt, "", topicsSchema, &out); err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(out.Topics))
	for _, t := range out.Topics {
		if t = strings.TrimSpace(t); t != "" && len(topics) < maxTopics {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

func (s *AssistantService) generateJSON(ctx context.Context, prompt, modelName string, schema *llm.Schema, v any) error {
	ctx, cancel := context.WithTimeout(ctx, llm.Timeout(s.cfg))
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{llm.UserMessage(prompt)},
		Schema:      schema,
		Model:       modelName,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

func invalidOutput(format string, args ...any) error {
	return &llm.Error{Kind: llm.KindInvalidOutput, Err: fmt.Errorf(format, args...)}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
