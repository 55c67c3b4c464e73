package commands

import (
	"errors"

	"github.com/okian/fairway/internal/adapters/repository"
)

// Error kinds a handler can report. Every kind is rendered as a notice to the
// sender; none of them stop the bot.
var (
	ErrValidation       = errors.New("invalid command arguments")
	ErrUnauthorized     = errors.New("not authorized")
	ErrNotFound         = errors.New("not found")
	ErrCollaborator     = errors.New("collaborator unavailable")
	ErrPersistence      = repository.ErrPersistence
	ErrDuplicateCommand = errors.New("command already registered")
	ErrInvalidCommand   = errors.New("invalid command name")
)

// noticeError carries the text shown to the sender next to its kind.
type noticeError struct {
	kind  error
	text  string
	cause error
}

func (e *noticeError) Error() string { return e.text }

func (e *noticeError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Notice returns an error of kind whose user-facing text is text.
func Notice(kind error, text string, cause error) error {
	return &noticeError{kind: kind, text: text, cause: cause}
}

// Fallback notices for errors that carry no user-facing text.
const (
	NotAuthorized      = "❌ You're not authorized to use this command."
	PersistenceFailed  = "⚠️ I couldn't save that. Please try again in a moment."
	CollaboratorFailed = "⚠️ Something went wrong talking to an outside service. Please try again later."
)

// render turns a handler error into the reply text.
func render(err error) string {
	var n *noticeError
	switch {
	case errors.As(err, &n):
		return n.text
	case errors.Is(err, ErrUnauthorized):
		return NotAuthorized
	case errors.Is(err, ErrPersistence):
		return PersistenceFailed
	default:
		return CollaboratorFailed
	}
}

// outcome maps an error to a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "denied"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}
