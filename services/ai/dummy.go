package aisvc

import (
	"context"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/chat"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
)

// DummyService is the offline stand-in used in tests and when no API key is
// configured.
type DummyService struct {
	Reply string
	Draft exam.Draft
	Err   error

	// OnChat and OnScan, when set, run at the start of the corresponding
	// call. Tests use them to interleave work with an in-flight request.
	OnChat func()
	OnScan func()
}

var (
	_ chat.Assistant = (*DummyService)(nil)
	_ exam.Scanner   = (*DummyService)(nil)
)

func NewDummyService() *DummyService {
	return &DummyService{Reply: chatEmptyReply}
}

func (svc *DummyService) Chat(_ context.Context, _ []chat.Message, _, _ string) string {
	if svc.OnChat != nil {
		svc.OnChat()
	}
	return svc.Reply
}

func (svc *DummyService) ScanExam(_ context.Context, _ []byte, _ string) (exam.Draft, error) {
	if svc.OnScan != nil {
		svc.OnScan()
	}
	if svc.Err != nil {
		return exam.Draft{}, svc.Err
	}
	return svc.Draft, nil
}
