package reply

import (
	"context"

	"github.com/waylis/waycli/internal/chat"
	"github.com/waylis/waycli/internal/state"
)

// DefaultChatName names the chat created implicitly when a command is
// sent with no chat selected.
const DefaultChatName = "My first chat"

// Engine drives typed submissions against the active chat and the
// current reply expectation. On failure nothing is cleared: the caller
// keeps the entered value for retry.
type Engine struct {
	Timeline *state.Timeline
	Chats    *state.ChatList
	Uploader *Uploader
}

// NewEngine wires the resolution engine into the application state.
func NewEngine(app *state.App) *Engine {
	return &Engine{
		Timeline: app.Timeline,
		Chats:    app.Chats,
		Uploader: &Uploader{API: app.API},
	}
}

// Pending returns the open question's id and restriction in one
// consistent snapshot. Both are zero when command selection is
// expected.
func (e *Engine) Pending() (string, *chat.ReplyRestriction) {
	cr := e.Timeline.CurrentReply()
	if cr == nil {
		return "", nil
	}
	return cr.To, cr.Expected
}

// Expected returns the restriction the server is currently waiting on,
// or nil when command selection is expected.
func (e *Engine) Expected() *chat.ReplyRestriction {
	_, expected := e.Pending()
	return expected
}

// SubmitBody sends a typed answer to the active chat. replyTo is the
// question id captured when the answer was validated; a pushed message
// can advance the open question concurrently, so it is never re-read
// here.
func (e *Engine) SubmitBody(ctx context.Context, body chat.Body, replyTo string) (chat.Message, error) {
	if !body.Type.UserSubmittable() {
		return chat.Message{}, validationf("%q cannot be submitted by a user", body.Type)
	}
	active := e.Chats.Active()
	if active == nil {
		return chat.Message{}, validationf("no chat is selected")
	}

	return e.Timeline.SendMessage(ctx, chat.CreateMessageParams{
		ChatID:  active.ID,
		Body:    body,
		ReplyTo: replyTo,
	})
}

// SubmitCommand invokes a catalog command. With no active chat one is
// created implicitly (and becomes active) before submitting.
func (e *Engine) SubmitCommand(ctx context.Context, value string) (chat.Message, error) {
	active := e.Chats.Active()
	if active == nil {
		created, err := e.Chats.CreateChat(ctx, DefaultChatName)
		if err != nil {
			return chat.Message{}, err
		}
		active = &created
	}

	return e.Timeline.SendMessage(ctx, chat.CreateMessageParams{
		ChatID: active.ID,
		Body:   chat.Body{Type: chat.BodyCommand, Command: value},
	})
}

// SubmitFile validates, uploads and sends a single-file answer. The
// open question is snapshotted before the upload so a concurrent push
// cannot redirect the answer.
func (e *Engine) SubmitFile(ctx context.Context, f LocalFile) (chat.Message, error) {
	replyTo, exp := e.Pending()
	var limits *chat.FileLimits
	if exp != nil {
		limits = exp.File
	}
	meta, err := e.Uploader.UploadFile(ctx, f, limits)
	if err != nil {
		return chat.Message{}, err
	}
	return e.SubmitBody(ctx, chat.Body{Type: chat.BodyFile, File: meta}, replyTo)
}

// SubmitFiles validates, uploads and sends a multi-file answer. The
// batch is atomic: a failing file means no message is sent.
func (e *Engine) SubmitFiles(ctx context.Context, files []LocalFile) (chat.Message, error) {
	replyTo, exp := e.Pending()
	var limits *chat.FilesLimits
	if exp != nil {
		limits = exp.Files
	}
	metas, err := e.Uploader.UploadFiles(ctx, files, limits)
	if err != nil {
		return chat.Message{}, err
	}
	return e.SubmitBody(ctx, chat.Body{Type: chat.BodyFiles, Files: metas}, replyTo)
}
