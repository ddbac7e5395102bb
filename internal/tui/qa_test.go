package tui

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/54b3r/aimicro-go/internal/client"
)

// openQA returns an app with the Q&A tab visible.
func openQA(t *testing.T, api API) *App {
	t.Helper()
	app := newTestApp(t, api)
	send(app, keyMsg("tab"))
	require.Equal(t, TabQA, app.Active())
	return app
}

func TestQA_AskBeforeUpload(t *testing.T) {
	api := &MockAPI{}
	app := openQA(t, api)

	send(app, keyMsg("down"))
	app.qa().question.SetValue("What is this?")
	cmd := send(app, keyMsg("enter"))

	assert.Nil(t, cmd)
	assert.Empty(t, api.asks)
	assert.Equal(t, DocNoDocument, app.DocState())
	assert.Contains(t, app.View(), "Please upload a document to begin.")
}

func TestQA_UploadThenAsk(t *testing.T) {
	api := &MockAPI{
		UploadFileFunc: func(context.Context, string) (string, error) {
			return "Document 'report.pdf' processed successfully.", nil
		},
		AskFunc: func(context.Context, string) (string, error) {
			return "**Fredville** is the capital.", nil
		},
	}
	app := openQA(t, api)

	app.qa().document.SetValue("/tmp/docs/report.pdf")
	cmd := send(app, keyMsg("enter"))
	assert.Equal(t, DocProcessing, app.DocState())
	assert.Contains(t, app.View(), "Processing report.pdf")

	send(app, resultOf(t, cmd))
	assert.Equal(t, DocReady, app.DocState())
	assert.Equal(t, fieldQuestion, app.qa().field, "focus moves to the question")
	assert.Contains(t, app.View(), "Document 'report.pdf' ready! Ask your question.")

	send(app, keyMsg("enter"))
	assert.Contains(t, app.View(), "Please enter a question.")

	app.qa().question.SetValue("What is the capital?")
	send(app, resultOf(t, send(app, keyMsg("enter"))))

	assert.Equal(t, []string{"/tmp/docs/report.pdf"}, api.uploads)
	assert.Equal(t, []string{"What is the capital?"}, api.asks)
	view := app.View()
	assert.Contains(t, view, "Answer:")
	assert.Contains(t, view, "**Fredville** is the capital.")
}

func TestQA_UploadFailure(t *testing.T) {
	api := &MockAPI{UploadFileFunc: func(context.Context, string) (string, error) {
		return "", &client.Error{
			Kind:   client.KindClientError,
			Status: http.StatusBadRequest,
			Detail: "Only PDF files are allowed.",
		}
	}}
	app := openQA(t, api)

	app.qa().document.SetValue("notes.txt")
	send(app, resultOf(t, send(app, keyMsg("enter"))))

	assert.Equal(t, DocFailed, app.DocState())
	assert.Contains(t, app.View(), "Bad request: Only PDF files are allowed.")
}

func TestQA_NewFileResetsReadyState(t *testing.T) {
	release := make(chan struct{})
	api := &MockAPI{UploadFileFunc: func(_ context.Context, path string) (string, error) {
		if path == "b.pdf" {
			<-release
		}
		return "ok", nil
	}}
	app := openQA(t, api)

	app.qa().document.SetValue("a.pdf")
	send(app, resultOf(t, send(app, keyMsg("enter"))))
	require.Equal(t, DocReady, app.DocState())

	// Choosing another file drops readiness until its upload completes.
	send(app, keyMsg("up"))
	app.qa().document.SetValue("b.pdf")
	cmd := send(app, keyMsg("enter"))
	assert.Equal(t, DocProcessing, app.DocState())
	assert.Equal(t, "b.pdf", app.qa().session.FileName)

	// A late result for the previous file is ignored.
	send(app, uploadMsg{name: "a.pdf", message: "stale"})
	assert.Equal(t, DocProcessing, app.DocState())

	close(release)
	send(app, resultOf(t, cmd))
	assert.Equal(t, DocReady, app.DocState())
}

func TestQA_SameFileReuploads(t *testing.T) {
	api := &MockAPI{}
	app := openQA(t, api)

	for range 2 {
		app.qa().document.SetValue("a.pdf")
		app.qa().field = fieldDocument
		send(app, resultOf(t, send(app, keyMsg("enter"))))
	}
	assert.Equal(t, []string{"a.pdf", "a.pdf"}, api.uploads)
	assert.Equal(t, DocReady, app.DocState())
}

func TestQA_EmptyPathWarns(t *testing.T) {
	app := openQA(t, &MockAPI{})
	assert.Nil(t, send(app, keyMsg("enter")))
	assert.Contains(t, app.View(), "Please choose a PDF document to upload.")
	assert.Equal(t, DocNoDocument, app.DocState())
}
