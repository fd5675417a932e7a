// Package console implements the line-oriented notepad console shared by
// the SSH server and `notepad edit`.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/term"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/command"
	"pkt.systems/notepad/internal/eventbus"
	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/internal/sessionprefs"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// Config configures a console.
type Config struct {
	UserID schema.UserID
	Prompt string
	Theme  string
	Width  int
	// FileRoot is where relative paths resolve. With Confine set, paths
	// outside it are rejected.
	FileRoot  string
	Confine   bool
	Clipboard core.Clipboard
	Events    <-chan eventbus.Event
}

// Console runs an interactive notepad session over a terminal stream.
type Console struct {
	term    *term.Terminal
	service core.Service
	handler *command.Handler
	cfg     Config
	theme   theme
	files   *files
	prefs   *sessionprefs.Prefs

	lines chan lineResult
	opens chan openResult

	mu     sync.Mutex
	width  int
	echoed map[string]int
}

type lineResult struct {
	line string
	err  error
}

type openResult struct {
	seq     uint64
	name    string
	content string
	err     error
}

// New constructs a console over rw.
func New(rw io.ReadWriter, service core.Service, handler *command.Handler, cfg Config) *Console {
	if cfg.Prompt == "" {
		cfg.Prompt = "notepad> "
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	c := &Console{
		term:    term.NewTerminal(rw, cfg.Prompt),
		service: service,
		handler: handler,
		cfg:     cfg,
		theme:   themeForName(cfg.Theme),
		prefs:   sessionprefs.New(),
		lines:   make(chan lineResult),
		opens:   make(chan openResult, 4),
		width:   width,
		echoed:  make(map[string]int),
	}
	c.files = &files{console: c, root: cfg.FileRoot, confine: cfg.Confine}
	return c
}

// SetSize updates the terminal dimensions.
func (c *Console) SetSize(width, height int) {
	if width <= 0 {
		return
	}
	c.mu.Lock()
	c.width = width
	c.mu.Unlock()
	_ = c.term.SetSize(width, height)
}

func (c *Console) currentWidth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *Console) log(ctx context.Context) pslog.Logger {
	return logx.WithUser(ctx, c.cfg.UserID)
}

// Run serves the console until the user quits, input ends, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = logx.ContextWithUserLogger(ctx, c.log(ctx), c.cfg.UserID)
	ctx = sessionprefs.WithContext(ctx, c.prefs)
	ctx = core.WithPrompter(ctx, linePrompter{console: c})
	ctx = core.WithFileHandler(ctx, c.files)
	if c.cfg.Clipboard != nil {
		ctx = core.WithClipboard(ctx, c.cfg.Clipboard)
	}
	log := pslog.Ctx(ctx)

	resp, err := c.service.GetSession(ctx, schema.GetSessionRequest{UserID: c.cfg.UserID})
	if err != nil {
		return err
	}
	c.prefs.Remember(schema.Caret(len([]rune(resp.Session.Document.Content))))
	c.println(c.theme.meta.Render("notepad console. Type text to insert it, /help for commands."))
	c.printSession(ctx, resp)
	log.Info("console session start", "width", c.currentWidth())

	go c.readLines(ctx)

	events := c.cfg.Events
	for {
		select {
		case <-ctx.Done():
			return nil
		case in, ok := <-c.lines:
			if !ok {
				return nil
			}
			if in.err != nil {
				if errors.Is(in.err, io.EOF) {
					log.Info("console input closed")
					return nil
				}
				return in.err
			}
			if c.handleLine(ctx, in.line) {
				log.Info("console session end")
				return nil
			}
		case res := <-c.opens:
			c.completeOpen(ctx, res)
		case ev, ok := <-events:
			if !ok {
				events = nil
				break
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Console) readLines(ctx context.Context) {
	defer close(c.lines)
	for {
		line, err := c.term.ReadLine()
		select {
		case c.lines <- lineResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// handleLine runs one input line and reports whether the console should exit.
func (c *Console) handleLine(ctx context.Context, line string) bool {
	reply, handled, err := c.handler.Handle(ctx, c.cfg.UserID, line)
	if !handled {
		reply, err = c.handler.InsertLine(ctx, c.cfg.UserID, line)
	}
	if err != nil {
		c.printError(err)
		return false
	}
	if reply.Quit {
		return true
	}
	for _, text := range reply.Lines {
		c.println(text)
	}
	if reply.Response != nil {
		if reply.Response.Notice != "" {
			c.mu.Lock()
			c.echoed[reply.Response.Notice]++
			c.mu.Unlock()
		}
		if reply.Show {
			c.printDocument(*reply.Response)
		}
		if handled {
			c.printSession(ctx, *reply.Response)
		}
	}
	return false
}

func (c *Console) completeOpen(ctx context.Context, res openResult) {
	if res.err != nil {
		c.printError(res.err)
		return
	}
	resp, err := c.service.LoadFile(ctx, schema.LoadFileRequest{
		UserID: c.cfg.UserID,
		File:   schema.OpenFileResult{Seq: res.seq, Name: res.name, Content: res.content},
	})
	if err != nil {
		c.printError(err)
		return
	}
	if resp.Notice != "" {
		c.println(resp.Notice)
		c.mu.Lock()
		c.echoed[resp.Notice]++
		c.mu.Unlock()
		return
	}
	c.prefs.Remember(schema.Caret(len([]rune(resp.Session.Document.Content))))
	c.println(c.theme.meta.Render(fmt.Sprintf("opened %s", res.name)))
	c.printSession(ctx, resp)
}

// handleEvent prints notices raised by other connections of the same user.
// Notices this console already printed from a reply are skipped once.
func (c *Console) handleEvent(ev eventbus.Event) {
	if ev.Missed > 0 {
		c.println(c.theme.meta.Render(fmt.Sprintf("(%d updates from other connections missed)", ev.Missed)))
	}
	if ev.Type != eventbus.EventNotice {
		return
	}
	msg := ev.Notice.Message
	c.mu.Lock()
	if c.echoed[msg] > 0 {
		c.echoed[msg]--
		if c.echoed[msg] == 0 {
			delete(c.echoed, msg)
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	if ev.Notice.Level == schema.NoticeWarn {
		c.println(c.theme.errorLine.Render(msg))
		return
	}
	c.println(msg)
}

func (c *Console) printSession(ctx context.Context, resp schema.SessionResponse) {
	stats := core.ComputeStats(resp.Session.Document.Content, sessionprefs.FromContext(ctx).Selection())
	width := c.currentWidth()
	c.println(renderTabBar(resp.Session, width, c.theme))
	c.println(renderStatus(resp.Session, stats, width, c.theme))
}

func (c *Console) printDocument(resp schema.SessionResponse) {
	lines := renderDocument(resp.Session.Document.Content, resp.Session.View.WordWrap, c.currentWidth(), c.theme)
	c.println(strings.Join(lines, "\n"))
}

func (c *Console) printError(err error) {
	c.println(c.theme.errorLine.Render("error: " + err.Error()))
}

func (c *Console) println(text string) {
	_, _ = io.WriteString(c.term, text+"\n")
}
