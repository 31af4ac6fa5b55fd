package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/emzola/shelflog/data"
	"github.com/emzola/shelflog/data/dto"
	"github.com/emzola/shelflog/store"
	"github.com/emzola/shelflog/view"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func listCmd(opts *options) *cobra.Command {
	var filters struct{ status, category, title string }
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := data.Filters{
				Status:   data.Status(filters.status),
				Category: filters.category,
				Title:    filters.title,
			}
			api := opts.client(cmd.ErrOrStderr())
			var res *dto.ListBooksResponse
			var err error
			if f.IsZero() {
				res, err = api.ListAll(cmd.Context())
			} else {
				res, err = api.List(cmd.Context(), f)
			}
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.output, res, func(r *view.Renderer) {
				if len(res.Books) == 0 {
					r.Empty(f)
					return
				}
				r.Table(res.Books)
			})
		},
	}
	cmd.Flags().StringVar(&filters.status, "status", "", "only books with this status")
	cmd.Flags().StringVar(&filters.category, "category", "", "only books in this category")
	cmd.Flags().StringVar(&filters.title, "title", "", "only books whose title contains this text")
	return cmd
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a book and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := opts.client(cmd.ErrOrStderr()).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.output, book, func(r *view.Renderer) {
				r.Detail(book, nil)
			})
		},
	}
}

// bookFlags are the editable fields of a book.
type bookFlags struct {
	title, author, category, status string
	notes                           []string
}

func (f *bookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "book title")
	cmd.Flags().StringVar(&f.author, "author", "", "book author")
	cmd.Flags().StringVar(&f.category, "category", "", "book category")
	cmd.Flags().StringVar(&f.status, "status", "", "reading status (to-read|reading|completed)")
	cmd.Flags().StringArrayVar(&f.notes, "note", nil, "a note; repeat for several")
}

func addCmd(opts *options) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := &view.BookForm{
				Title:     f.title,
				Author:    f.author,
				Category:  f.category,
				Status:    f.status,
				NotesText: strings.Join(f.notes, "\n"),
			}
			if errs := form.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid book: %v", errs)
			}
			res, err := opts.client(cmd.ErrOrStderr()).Add(cmd.Context(), form.CreateBody())
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.output, res, func(r *view.Renderer) {
				r.Message(res.Message)
				r.Detail(res.Book, nil)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd(opts *options) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a book; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := opts.client(cmd.ErrOrStderr())
			flags := cmd.Flags()
			var body dto.UpdateBookRequestBody
			if flags.Changed("title") {
				body.Title = &f.title
			}
			if flags.Changed("author") {
				body.Author = &f.author
			}
			if flags.Changed("category") {
				body.Category = &f.category
			}
			if flags.Changed("status") {
				body.Status = &f.status
			}
			if flags.Changed("note") {
				// Keep the identity of notes whose text is unchanged.
				book, err := api.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				body.Notes = dto.NotesOf(data.NotesFromText(strings.Join(f.notes, "\n"), book.Notes))
			}
			res, err := api.Edit(cmd.Context(), args[0], body)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.output, res, func(r *view.Renderer) {
				r.Message(res.Message)
				r.Detail(res.Book, nil)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := opts.client(cmd.ErrOrStderr()).Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.output, map[string]string{"message": message}, func(r *view.Renderer) {
				r.Message(message)
			})
		},
	}
}

func shellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit books interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.New(opts.client(cmd.ErrOrStderr()))
			return view.NewShell(s, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}

// write prints v in the requested format; text output is drawn by text.
func write(w io.Writer, format string, v interface{}, text func(r *view.Renderer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(view.NewRenderer(w))
		return nil
	}
}
