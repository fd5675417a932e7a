// Package logx binds notepad identities (user, tab, front end) to pslog loggers.
package logx

import (
	"context"

	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// Surface names the front end a request came through.
type Surface string

const (
	SurfaceHTTP  Surface = "http"
	SurfaceSSH   Surface = "ssh"
	SurfaceLocal Surface = "local"
)

// marks records which identity fields the context logger already carries,
// so nested layers do not repeat them.
type marks struct {
	user    schema.UserID
	tab     schema.TabID
	surface Surface
}

type marksKey struct{}

func marksFrom(ctx context.Context) marks {
	if ctx == nil {
		return marks{}
	}
	m, _ := ctx.Value(marksKey{}).(marks)
	return m
}

func withMarks(ctx context.Context, m marks) context.Context {
	return context.WithValue(ctx, marksKey{}, m)
}

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithUser returns the context logger with a user field, unless it has one.
func WithUser(ctx context.Context, userID schema.UserID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if userID == "" || marksFrom(ctx).user == userID {
		return log
	}
	return log.With("user", userID)
}

// WithRemote annotates the logger with the remote address of a connection.
func WithRemote(log pslog.Logger, addr string) pslog.Logger {
	if addr != "" {
		log = log.With("remote", addr)
	}
	return log
}

// ContextWithUserLogger stores log on ctx and marks it as carrying userID.
func ContextWithUserLogger(ctx context.Context, log pslog.Logger, userID schema.UserID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	if userID == "" {
		return ctx
	}
	m := marksFrom(ctx)
	m.user = userID
	return withMarks(ctx, m)
}

// ContextWithTab adds a tab field to the context logger.
func ContextWithTab(ctx context.Context, tabID schema.TabID) context.Context {
	m := marksFrom(ctx)
	if ctx == nil || tabID == 0 || m.tab == tabID {
		return ctx
	}
	m.tab = tabID
	ctx = pslog.ContextWithLogger(ctx, pslog.Ctx(ctx).With("tab", tabID))
	return withMarks(ctx, m)
}

// ContextWithSurface adds a surface field to the context logger.
func ContextWithSurface(ctx context.Context, surface Surface) context.Context {
	m := marksFrom(ctx)
	if ctx == nil || surface == "" || m.surface == surface {
		return ctx
	}
	m.surface = surface
	ctx = pslog.ContextWithLogger(ctx, pslog.Ctx(ctx).With("surface", string(surface)))
	return withMarks(ctx, m)
}

// SurfaceFrom reports the front end recorded on ctx.
func SurfaceFrom(ctx context.Context) Surface {
	return marksFrom(ctx).surface
}

// CopyContextFields carries the identity marks of src over to dst. The
// logger on dst is expected to already hold the matching fields.
func CopyContextFields(dst context.Context, src context.Context) context.Context {
	m := marksFrom(src)
	if dst == nil || m == (marks{}) {
		return dst
	}
	return withMarks(dst, m)
}
