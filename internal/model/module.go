package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ModuleKind string

const (
	ModuleText  ModuleKind = "text"
	ModuleVideo ModuleKind = "video"
)

type VideoOrigin string

const (
	VideoEmbed  VideoOrigin = "embed"
	VideoUpload VideoOrigin = "upload"
)

// ModuleContent 是模块内容的变体：TextContent 或 VideoContent
type ModuleContent interface {
	Kind() ModuleKind
	validate() error
}

type TextContent struct {
	HTML string
}

func (TextContent) Kind() ModuleKind { return ModuleText }

func (t TextContent) validate() error {
	if strings.TrimSpace(t.HTML) == "" {
		return fmt.Errorf("text module content is empty")
	}
	return nil
}

type VideoContent struct {
	URL             string
	Origin          VideoOrigin
	DurationSeconds float64
}

func (VideoContent) Kind() ModuleKind { return ModuleVideo }

func (v VideoContent) validate() error {
	if strings.TrimSpace(v.URL) == "" {
		return fmt.Errorf("video module url is empty")
	}
	if v.Origin != VideoEmbed && v.Origin != VideoUpload {
		return fmt.Errorf("unknown video origin %q", v.Origin)
	}
	return nil
}

// swagger:model Module
type Module struct {
	ID      string
	Title   string
	Content ModuleContent
}

func NewTextModule(title, html string) Module {
	return Module{ID: GenerateUUID(), Title: title, Content: TextContent{HTML: html}}
}

func NewVideoModule(title, url string, origin VideoOrigin) Module {
	return Module{ID: GenerateUUID(), Title: title, Content: VideoContent{URL: url, Origin: origin}}
}

func (m Module) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("module title is required")
	}
	if m.Content == nil {
		return fmt.Errorf("module %q has no content", m.Title)
	}
	return m.Content.validate()
}

// moduleJSON 是模块在接口和 JSON 列中的存储形态
type moduleJSON struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Type            ModuleKind  `json:"type"`
	Content         string      `json:"content"`
	VideoType       VideoOrigin `json:"videoType,omitempty"`
	DurationSeconds float64     `json:"durationSeconds,omitempty"`
}

func (m Module) MarshalJSON() ([]byte, error) {
	out := moduleJSON{ID: m.ID, Title: m.Title}
	switch c := m.Content.(type) {
	case TextContent:
		out.Type = ModuleText
		out.Content = c.HTML
	case VideoContent:
		out.Type = ModuleVideo
		out.Content = c.URL
		out.VideoType = c.Origin
		out.DurationSeconds = c.DurationSeconds
	case nil:
	default:
		return nil, fmt.Errorf("unsupported module content %T", c)
	}
	return json.Marshal(out)
}

func (m *Module) UnmarshalJSON(data []byte) error {
	var in moduleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.ID = in.ID
	m.Title = in.Title
	switch in.Type {
	case ModuleText:
		m.Content = TextContent{HTML: in.Content}
	case ModuleVideo:
		origin := in.VideoType
		if origin == "" {
			origin = VideoEmbed
		}
		m.Content = VideoContent{URL: in.Content, Origin: origin, DurationSeconds: in.DurationSeconds}
	default:
		return fmt.Errorf("unknown module type %q", in.Type)
	}
	return nil
}
