package tool

import (
	"archive/zip"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
)

// MindmapSheet is one sheet of a parsed mind map.
type MindmapSheet struct {
	Title string        `json:"title"`
	Topic *MindmapTopic `json:"topic,omitempty"`
}

// MindmapTopic is a node of a mind map with its attached subtopics.
type MindmapTopic struct {
	Title  string          `json:"title"`
	Note   string          `json:"note,omitempty"`
	Labels []string        `json:"labels,omitempty"`
	Topics []*MindmapTopic `json:"topics,omitempty"`
}

// ParseXmind reads an .xmind archive. XMind Zen files carry content.json;
// XMind 8 files carry content.xml. Content larger than maxSize bytes once
// decompressed is rejected.
func ParseXmind(path string, maxSize int64) ([]MindmapSheet, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var legacy *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case "content.json":
			data, err := readZipFile(f, maxSize)
			if err != nil {
				return nil, err
			}
			return parseZenContent(data)
		case "content.xml":
			legacy = f
		}
	}
	if legacy == nil {
		return nil, fmt.Errorf("%s has neither content.json nor content.xml", path)
	}
	data, err := readZipFile(legacy, maxSize)
	if err != nil {
		return nil, err
	}
	return parseLegacyContent(data)
}

func readZipFile(f *zip.File, maxSize int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", f.Name, maxSize)
	}
	return data, nil
}

type zenNotes struct {
	Plain struct {
		Content string `json:"content"`
	} `json:"plain"`
}

type zenChildren struct {
	Attached []zenTopic `json:"attached"`
}

type zenTopic struct {
	Title    string      `json:"title"`
	Labels   []string    `json:"labels"`
	Notes    *zenNotes   `json:"notes"`
	Children zenChildren `json:"children"`
}

type zenSheet struct {
	Title     string   `json:"title"`
	RootTopic zenTopic `json:"rootTopic"`
}

func parseZenContent(data []byte) ([]MindmapSheet, error) {
	var sheets []zenSheet
	if err := json.Unmarshal(data, &sheets); err != nil {
		return nil, fmt.Errorf("content.json: %w", err)
	}
	out := make([]MindmapSheet, 0, len(sheets))
	for _, s := range sheets {
		out = append(out, MindmapSheet{Title: s.Title, Topic: convertZenTopic(s.RootTopic)})
	}
	return out, nil
}

func convertZenTopic(t zenTopic) *MindmapTopic {
	topic := &MindmapTopic{Title: t.Title, Labels: t.Labels}
	if t.Notes != nil {
		topic.Note = t.Notes.Plain.Content
	}
	for _, c := range t.Children.Attached {
		topic.Topics = append(topic.Topics, convertZenTopic(c))
	}
	return topic
}

type legacyChildren struct {
	Type   string        `xml:"type,attr"`
	Topics []legacyTopic `xml:"topic"`
}

type legacyTopic struct {
	Title    string           `xml:"title"`
	Labels   []string         `xml:"labels>label"`
	Note     string           `xml:"notes>plain"`
	Children []legacyChildren `xml:"children>topics"`
}

type legacySheet struct {
	Title string      `xml:"title"`
	Topic legacyTopic `xml:"topic"`
}

type legacyWorkbook struct {
	Sheets []legacySheet `xml:"sheet"`
}

func parseLegacyContent(data []byte) ([]MindmapSheet, error) {
	var wb legacyWorkbook
	if err := xml.Unmarshal(data, &wb); err != nil {
		return nil, fmt.Errorf("content.xml: %w", err)
	}
	out := make([]MindmapSheet, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		out = append(out, MindmapSheet{Title: s.Title, Topic: convertLegacyTopic(s.Topic)})
	}
	return out, nil
}

func convertLegacyTopic(t legacyTopic) *MindmapTopic {
	topic := &MindmapTopic{Title: t.Title, Labels: t.Labels, Note: t.Note}
	for _, group := range t.Children {
		if group.Type != "" && group.Type != "attached" {
			continue
		}
		for _, c := range group.Topics {
			topic.Topics = append(topic.Topics, convertLegacyTopic(c))
		}
	}
	return topic
}

type parseXmindArgs struct {
	Path string `json:"path" desc:"XMind file to parse" required:"true"`
}

// NewParseXmindTool creates a tool that returns the structure of an XMind file as JSON.
func NewParseXmindTool(opts ...DocumentToolOption) Registration {
	cfg := applyDocumentOpts(opts)
	files := applyFileOpts(cfg.fileOpts)

	return Func("parse_xmind", "Parse an XMind file and return its structure as a JSON string",
		func(ctx context.Context, args parseXmindArgs) (string, error) {
			path, err := files.resolvePath(args.Path)
			if err != nil {
				return "", err
			}
			sheets, err := ParseXmind(path, files.maxFileSize)
			if err != nil {
				return "", fmt.Errorf("xmind parsing failed: %w", err)
			}
			out, err := json.Marshal(sheets)
			if err != nil {
				return "", err
			}
			return string(out), nil
		})
}
