package core

import (
	"context"
	"time"

	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// KeyValueStore is the persistent mirror of a user's active document and view settings.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// StoreProvider hands out one KeyValueStore per user.
type StoreProvider interface {
	Bucket(userID schema.UserID) (KeyValueStore, error)
}

// BucketDropper is implemented by providers that can delete a user's bucket.
type BucketDropper interface {
	DropBucket(userID schema.UserID) error
}

// FileHandler lets the user pick a file to open and receives documents to download.
// PickFile must not block on the read; results arrive through Service.LoadFile.
type FileHandler interface {
	PickFile(ctx context.Context, req schema.OpenFileRequest) error
	Emit(ctx context.Context, file schema.FilePayload) error
}

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// ServiceDeps captures optional dependencies for the core service.
type ServiceDeps struct {
	Store     StoreProvider
	Files     FileHandler
	Prompter  Prompter
	Clipboard Clipboard
	EventSink EventSink
	Logger    pslog.Logger
	Now       func() time.Time
}

// SessionDeps captures the collaborators of a single user session.
type SessionDeps struct {
	Store     KeyValueStore
	Files     FileHandler
	Prompter  Prompter
	Clipboard Clipboard
	EventSink EventSink
	Now       func() time.Time
}
