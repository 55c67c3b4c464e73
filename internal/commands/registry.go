// Package commands maps chat commands to handlers.
package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/fairway/internal/adapters/chat"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Role says who may run a command.
type Role int

const (
	// Anyone may run the command.
	Anyone Role = iota
	// Owner restricts the command to the configured owner.
	Owner
)

// Request is one parsed command invocation.
type Request struct {
	Message chat.Message
	Name    string
	Args    string
	Now     time.Time
}

// Handler runs a command and returns the reply. An empty reply sends nothing.
type Handler func(ctx context.Context, req Request) (string, error)

// Command is a registration table entry.
type Command struct {
	Name    string
	Aliases []string
	Role    Role
	Usage   string
	Summary string
	Handler Handler
}

// Registry holds the command table. It is built once at startup and read
// only afterwards.
type Registry struct {
	prefix  string
	ownerID string
	byName  map[string]*Command
	ordered []*Command
	now     func() time.Time
	logger  logger.Logger
}

// NewRegistry creates an empty table for commands starting with prefix.
func NewRegistry(prefix, ownerID string, l logger.Logger) *Registry {
	if l == nil {
		l = logger.Get().Named("commands")
	}
	return &Registry{
		prefix:  prefix,
		ownerID: ownerID,
		byName:  make(map[string]*Command),
		now:     time.Now,
		logger:  l,
	}
}

// Register adds commands. A name or alias that is already taken, empty or
// contains whitespace fails the whole call without registering anything from
// it.
func (r *Registry) Register(cmds ...Command) error {
	seen := make(map[string]bool)
	for _, c := range cmds {
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if name == "" || strings.ContainsAny(name, " \t\n") {
				return fmt.Errorf("%w: %q", ErrInvalidCommand, name)
			}
			if _, taken := r.byName[name]; taken || seen[name] {
				return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
			}
			seen[name] = true
		}
	}
	for i := range cmds {
		c := cmds[i]
		r.ordered = append(r.ordered, &c)
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			r.byName[name] = &c
		}
	}
	return nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.ordered))
	for _, c := range r.ordered {
		out = append(out, *c)
	}
	return out
}

// IsOwner reports whether userID is the privileged identity.
func (r *Registry) IsOwner(userID string) bool {
	return r.ownerID != "" && userID == r.ownerID
}

// Prefix is the token every command starts with.
func (r *Registry) Prefix() string {
	return r.prefix
}

// Parse splits "!name args" into name and args. ok is false for messages
// that are not commands.
func (r *Registry) Parse(content string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.prefix) {
		return "", "", false
	}
	rest := content[len(r.prefix):]
	name, args, _ = strings.Cut(rest, " ")
	if i := strings.IndexAny(name, "\t\n"); i >= 0 {
		args = name[i:] + " " + args
		name = name[:i]
	}
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(args), true
}

// Dispatch runs the command in msg, if any. handled is false when msg is not
// a known command. Every handler error is turned into a reply here.
func (r *Registry) Dispatch(ctx context.Context, msg chat.Message) (reply string, handled bool) {
	name, args, ok := r.Parse(msg.Content)
	if !ok {
		return "", false
	}
	cmd, ok := r.byName[name]
	if !ok {
		return "", false
	}

	start := r.now()
	var err error
	if cmd.Role == Owner && !r.IsOwner(msg.AuthorID) {
		err = ErrUnauthorized
	} else {
		reply, err = cmd.Handler(ctx, Request{Message: msg, Name: cmd.Name, Args: args, Now: start})
	}
	metrics.RecordCommand(cmd.Name, outcome(err), float64(time.Since(start).Milliseconds()))

	if err != nil {
		log := r.logger.With(
			logger.String("command", cmd.Name),
			logger.String("user_id", msg.AuthorID),
		)
		switch outcome(err) {
		case "error":
			log.Error(ctx, "command failed", logger.Error(err))
		default:
			log.Info(ctx, "command rejected", logger.Error(err))
		}
		return render(err), true
	}
	return reply, true
}
