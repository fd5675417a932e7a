package core

import (
	"context"

	"pkt.systems/notepad/schema"
)

// Service is the transport-agnostic API over per-user notepad sessions.
type Service interface {
	GetSession(ctx context.Context, req schema.GetSessionRequest) (schema.SessionResponse, error)
	CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.SessionResponse, error)
	CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.SessionResponse, error)
	ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.SessionResponse, error)
	UpdateContent(ctx context.Context, req schema.UpdateContentRequest) (schema.SessionResponse, error)
	NewDocument(ctx context.Context, req schema.NewDocumentRequest) (schema.SessionResponse, error)
	OpenDocument(ctx context.Context, req schema.OpenDocumentRequest) (schema.SessionResponse, error)
	ResolveSave(ctx context.Context, req schema.ResolveSaveRequest) (schema.SessionResponse, error)
	LoadFile(ctx context.Context, req schema.LoadFileRequest) (schema.SessionResponse, error)
	Save(ctx context.Context, req schema.SaveRequest) (schema.SessionResponse, error)
	SaveAs(ctx context.Context, req schema.SaveAsRequest) (schema.SessionResponse, error)
	SetSearch(ctx context.Context, req schema.SetSearchRequest) (schema.SessionResponse, error)
	FindNext(ctx context.Context, req schema.SearchRequest) (schema.SessionResponse, error)
	FindPrevious(ctx context.Context, req schema.SearchRequest) (schema.SessionResponse, error)
	Replace(ctx context.Context, req schema.SearchRequest) (schema.SessionResponse, error)
	ReplaceAll(ctx context.Context, req schema.ReplaceAllRequest) (schema.SessionResponse, error)
	DismissDialogs(ctx context.Context, req schema.DismissDialogsRequest) (schema.SessionResponse, error)
	ShowGoToLine(ctx context.Context, req schema.GetSessionRequest) (schema.SessionResponse, error)
	UpdateView(ctx context.Context, req schema.UpdateViewRequest) (schema.SessionResponse, error)
	InsertText(ctx context.Context, req schema.InsertTextRequest) (schema.SessionResponse, error)
	InsertDateTime(ctx context.Context, req schema.InsertDateTimeRequest) (schema.SessionResponse, error)
	Clipboard(ctx context.Context, req schema.ClipboardRequest) (schema.SessionResponse, error)
	SelectAll(ctx context.Context, req schema.GetSessionRequest) (schema.SessionResponse, error)
	GoToLine(ctx context.Context, req schema.GoToLineRequest) (schema.SessionResponse, error)
	Stats(ctx context.Context, req schema.StatsRequest) (schema.SessionResponse, error)
	// DropUser forgets the user's session and deletes its stored bucket.
	DropUser(ctx context.Context, userID schema.UserID) error
}
