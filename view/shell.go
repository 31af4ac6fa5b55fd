package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/store"
)

const shellPrompt = "shelflog> "

const helpText = `Commands:
  list                          show the books matching the current filters
  filter status|category|title <value>
                                set a filter; omit the value to remove it
  clear                         remove all filters
  show <id>                     show every detail of a book
  add                           add a book
  edit <id>                     edit a book
  delete <id>                   delete a book
  like <id>                     toggle the liked marker
  notes <id>                    expand or collapse the notes of a book
  retry                         repeat the last failed command
  help                          show this help
  exit                          leave the shell`

// Shell is an interactive loop over a client data store.
type Shell struct {
	store    *store.Store
	ui       *UIState
	render   *Renderer
	prompter *Prompter

	mu      sync.Mutex
	loading bool

	// retry repeats the last failed command.
	retry func(ctx context.Context) error
}

// NewShell creates a shell reading commands from in and writing screens to
// out.
func NewShell(s *store.Store, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		store:    s,
		ui:       NewUIState(),
		render:   NewRenderer(out),
		prompter: NewPrompter(in, out),
	}
}

// Run loads the list and then executes commands until exit, end of input or
// ctx is done.
func (sh *Shell) Run(ctx context.Context) error {
	unsubscribe := sh.store.Subscribe(sh.onChange)
	defer unsubscribe()

	sh.exec(ctx, sh.list)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := sh.prompter.Line(shellPrompt)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		cmd, rest := split(line)
		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		sh.dispatch(ctx, cmd, rest)
	}
}

// onChange prints the loading screen once per burst of requests.
func (sh *Shell) onChange(st store.State) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if st.Loading && !sh.loading {
		sh.render.Loading()
	}
	sh.loading = st.Loading
}

func (sh *Shell) dispatch(ctx context.Context, cmd, rest string) {
	switch cmd {
	case "help":
		sh.render.Message(helpText)
	case "list":
		sh.exec(ctx, sh.list)
	case "clear":
		sh.exec(ctx, func(ctx context.Context) error {
			if err := sh.store.ClearFilters(ctx); err != nil {
				return err
			}
			sh.renderList()
			return nil
		})
	case "filter":
		field, value := split(rest)
		sh.exec(ctx, func(ctx context.Context) error { return sh.filter(ctx, field, value) })
	case "retry":
		if sh.retry == nil {
			sh.render.Message("Nothing to retry.")
			return
		}
		sh.exec(ctx, sh.retry)
	case "add":
		sh.add(ctx)
	case "show", "edit", "delete", "like", "notes":
		id := strings.TrimSpace(rest)
		if id == "" {
			sh.render.Error(fmt.Sprintf("%s needs a book id", cmd), "")
			return
		}
		sh.withID(ctx, cmd, id)
	default:
		sh.render.Error(fmt.Sprintf("unknown command %q", cmd), "help")
	}
}

func (sh *Shell) withID(ctx context.Context, cmd, id string) {
	switch cmd {
	case "show":
		sh.exec(ctx, func(ctx context.Context) error {
			if err := sh.store.FetchByID(ctx, id); err != nil {
				return err
			}
			sh.render.Detail(sh.store.Snapshot().Selected, sh.ui)
			return nil
		})
	case "edit":
		sh.edit(ctx, id)
	case "delete":
		sh.exec(ctx, func(ctx context.Context) error {
			if err := sh.store.Delete(ctx, id); err != nil {
				return err
			}
			sh.render.Message("Book deleted successfully")
			sh.renderList()
			return nil
		})
	case "like":
		if sh.ui.ToggleLike(id) {
			sh.render.Message("Liked #" + id)
		} else {
			sh.render.Message("Unliked #" + id)
		}
		sh.renderList()
	case "notes":
		sh.ui.ToggleNotes(id)
		sh.renderList()
	}
}

// exec runs fn, remembering it for retry when it fails.
func (sh *Shell) exec(ctx context.Context, fn func(ctx context.Context) error) {
	sh.retry = nil
	err := fn(ctx)
	if err == nil {
		return
	}
	sh.retry = fn
	sh.render.Error(err.Error(), "retry")
}

func (sh *Shell) list(ctx context.Context) error {
	if err := sh.store.Refresh(ctx); err != nil {
		return err
	}
	sh.renderList()
	return nil
}

func (sh *Shell) renderList() {
	st := sh.store.Snapshot()
	if len(st.Books) == 0 {
		sh.render.Empty(st.Filters)
		return
	}
	sh.render.List(st.Books, st.Filters, sh.ui)
}

func (sh *Shell) filter(ctx context.Context, field, value string) error {
	var err error
	switch field {
	case "status":
		if value != "" && !data.Status(value).Valid() {
			sh.render.Error("status must be one of to-read, reading, completed", "")
			return nil
		}
		err = sh.store.SetFilterStatus(ctx, data.Status(value))
	case "category":
		err = sh.store.SetFilterCategory(ctx, value)
	case "title":
		err = sh.store.SetFilterTitle(ctx, value)
	default:
		sh.render.Error("filter needs one of status, category, title", "")
		return nil
	}
	if err != nil {
		return err
	}
	sh.renderList()
	return nil
}

func (sh *Shell) add(ctx context.Context) {
	form := NewBookForm()
	if !sh.fill(form) {
		return
	}
	body := form.CreateBody()
	sh.exec(ctx, func(ctx context.Context) error {
		if _, err := sh.store.Add(ctx, body); err != nil {
			return err
		}
		sh.render.Message("Book added successfully")
		sh.renderList()
		return nil
	})
}

func (sh *Shell) edit(ctx context.Context, id string) {
	if err := sh.store.FetchByID(ctx, id); err != nil {
		sh.retry = func(ctx context.Context) error {
			sh.edit(ctx, id)
			return nil
		}
		sh.render.Error(err.Error(), "retry")
		return
	}
	form := FormFromBook(sh.store.Snapshot().Selected)
	if !sh.fill(form) {
		return
	}
	body := form.UpdateBody()
	sh.exec(ctx, func(ctx context.Context) error {
		if _, err := sh.store.Edit(ctx, id, body); err != nil {
			return err
		}
		sh.render.Message("Book updated successfully")
		if err := sh.store.ClearFilters(ctx); err != nil {
			return err
		}
		sh.renderList()
		return nil
	})
}

// fill prompts for the form fields and validates them. It reports whether
// the form can be submitted.
func (sh *Shell) fill(form *BookForm) bool {
	if err := sh.prompter.Fill(form); err != nil {
		sh.render.Message("Cancelled.")
		return false
	}
	if errs := form.Validate(); len(errs) > 0 {
		sh.render.Error("Validation failed: "+joinErrors(errs), "")
		return false
	}
	return true
}

func joinErrors(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + errs[k]
	}
	return strings.Join(parts, ", ")
}

// split returns the first word of s and the trimmed remainder.
func split(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
