package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/floatchat/floatchat-go/internal/domain"
)

var (
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	systemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderer prints conversation snapshots incrementally: it remembers how many
// messages it has written and only emits the tail of each snapshot.
type renderer struct {
	mu       sync.Mutex
	out      io.Writer
	printed  int
	markdown *glamour.TermRenderer
}

func newRenderer(out io.Writer) *renderer {
	// Markdown rendering is best effort; fall back to plain text.
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		md = nil
	}
	return &renderer{out: out, markdown: md}
}

// catchUp prints every message the renderer has not yet written.
func (r *renderer) catchUp(msgs []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.printed > len(msgs) {
		// The list was replaced with something shorter (history reload).
		r.printed = 0
	}
	for _, msg := range msgs[r.printed:] {
		r.print(msg)
	}
	r.printed = len(msgs)
}

func (r *renderer) print(msg domain.Message) {
	switch msg.Sender {
	case domain.SenderUser:
		fmt.Fprintln(r.out, userStyle.Render("You: ")+msg.Text)
	case domain.SenderSystem:
		fmt.Fprintln(r.out, systemStyle.Render(msg.Text))
	default:
		fmt.Fprint(r.out, r.renderMarkdown(msg.Text))
	}
}

// renderMarkdown renders bot content for the terminal, returning the
// original text when rendering is unavailable or fails.
func (r *renderer) renderMarkdown(content string) string {
	if r.markdown == nil {
		return content + "\n"
	}
	rendered, err := r.markdown.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}

func (r *renderer) indicator(connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if connected {
		fmt.Fprintln(r.out, onlineStyle.Render("● online"))
	} else {
		fmt.Fprintln(r.out, offlineStyle.Render("● offline"))
	}
}

func (r *renderer) peerTyping(isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if isTyping {
		fmt.Fprintln(r.out, systemStyle.Render("peer is typing..."))
	}
}

func (r *renderer) welcome() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, r.renderMarkdown("Hello! I'm your assistant. How can I help you today?"))
}

func (r *renderer) prompt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, strings.Repeat("─", 40)+"\n> ")
}
