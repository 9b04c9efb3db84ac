// Package aisvc talks to Gemini for the two AI collaborators: the chat
// tutor and the exam digitizer.
package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/chat"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
)

const (
	chatFallbackReply = "Hệ thống đang bận hoặc quá tải, bạn vui lòng thử lại sau nhé!"
	chatEmptyReply    = "Mình có thể giúp gì thêm cho bạn?"

	chatSystemInstruction = "Bạn là Trợ lý Giáo dục EduExam AI.\n" +
		"Hãy trả lời ngắn gọn, sư phạm và khuyến khích học sinh.\n" +
		"Ngữ cảnh: Người dùng đang ở trang %s."

	scanSystemInstruction = "Bạn là chuyên gia số hóa đề thi chuyên nghiệp.\n" +
		"Nhiệm vụ: Phân tích tệp (Ảnh/PDF) và trích xuất thành JSON đề thi trắc nghiệm.\n" +
		"- Phải có title, subject, duration (phút).\n" +
		"- questions: mảng các câu hỏi trắc nghiệm (text, options mảng 4 chuỗi, correctAnswer 0-3, explanation).\n" +
		"- CHỈ TRẢ VỀ JSON, KHÔNG CÓ TEXT GIẢI THÍCH."

	scanPrompt = "Phân tích và trích xuất đề thi này sang định dạng JSON trắc nghiệm."
)

type GeminiService struct {
	client *genai.Client
	model  string
	logger core.Logger
}

var (
	_ chat.Assistant = (*GeminiService)(nil)
	_ exam.Scanner   = (*GeminiService)(nil)
)

func NewGeminiService(ctx context.Context, conf *core.Config, logger core.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiService{client: client, model: conf.GeminiModel, logger: logger}, nil
}

// Chat relays the transcript and the new message. Any failure degrades to a
// friendly fallback string; chat never surfaces errors to the caller.
func (svc *GeminiService) Chat(ctx context.Context, transcript []chat.Message, message, contextTag string) string {
	contents := make([]*genai.Content, 0, len(transcript)+1)
	for _, msg := range transcript {
		var role genai.Role = genai.RoleUser
		if msg.Role == chat.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	res, err := svc.client.Models.GenerateContent(ctx, svc.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fmt.Sprintf(chatSystemInstruction, contextTag), genai.RoleUser),
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("chat completion: %v", err), err)
		return chatFallbackReply
	}
	if text := res.Text(); text != "" {
		return text
	}
	return chatEmptyReply
}

var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":    {Type: genai.TypeString},
		"subject":  {Type: genai.TypeString},
		"duration": {Type: genai.TypeNumber},
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":            {Type: genai.TypeNumber},
					"text":          {Type: genai.TypeString},
					"options":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"correctAnswer": {Type: genai.TypeNumber},
					"explanation":   {Type: genai.TypeString},
				},
				Required: []string{"id", "text", "options", "correctAnswer", "explanation"},
			},
		},
	},
	Required: []string{"title", "subject", "duration", "questions"},
}

// ScanExam extracts a multiple-choice exam draft from an image or PDF.
func (svc *GeminiService) ScanExam(ctx context.Context, data []byte, mimeType string) (exam.Draft, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(scanPrompt),
		}, genai.RoleUser),
	}

	res, err := svc.client.Models.GenerateContent(ctx, svc.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(scanSystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    draftSchema,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("scanning exam: %v", err), err)
		return exam.Draft{}, exam.NewDigitizationError(err.Error(), err)
	}

	text := res.Text()
	if text == "" {
		return exam.Draft{}, exam.NewDigitizationError("AI không trả về dữ liệu.", nil)
	}

	// strip code fences in case the model ignores the response MIME type
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var draft exam.Draft
	if err = json.Unmarshal([]byte(text), &draft); err != nil {
		svc.logger.Error(fmt.Sprintf("decoding scanned exam: %v", err), err)
		return exam.Draft{}, exam.NewDigitizationError(err.Error(), err)
	}
	return draft, nil
}
