package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todos/internal/logger"
	"github.com/roach88/todos/internal/schema"
	"github.com/roach88/todos/internal/store"
)

// TodoOptions holds flags for add and update.
type TodoOptions struct {
	*RootOptions
	Inactive bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all todos",
		Long: `List all todos in insertion order.

Example:
  todos list --db ./todos.db
  todos list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(ctx context.Context, st *store.Store, log *logger.Logger, f *OutputFormatter) error {
				todos, err := st.GetTodos(ctx, log)
				if err != nil {
					return f.Fail("failed to list todos", err)
				}
				return f.Success(map[string]any{"todos": todos}, formatTodos(f, todos))
			})
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TodoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo",
		Long: `Add a todo. New todos are active unless --inactive is given.

Example:
  todos add "buy milk"
  todos add "file taxes" --inactive`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(ctx context.Context, st *store.Store, log *logger.Logger, f *OutputFormatter) error {
				body, err := validateTodo(args[0], !opts.Inactive)
				if err != nil {
					return f.Fail("invalid todo", err)
				}

				todo, err := st.AddTodo(ctx, log, store.NewTodo{Text: body.Text, Active: body.Active})
				if err != nil {
					return f.Fail("failed to add todo", err)
				}
				return f.Success(map[string]any{"todo": todo}, f.Sprintf("Added todo %d: %s", todo.ID, formatTodo(todo)))
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Inactive, "inactive", false, "mark the todo as done")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TodoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id> <text>",
		Short: "Replace the text and state of a todo",
		Long: `Replace the text and active state of a todo.
The todo becomes active unless --inactive is given.

Example:
  todos update 3 "buy oat milk"
  todos update 3 "buy oat milk" --inactive`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(ctx context.Context, st *store.Store, log *logger.Logger, f *OutputFormatter) error {
				body, err := validateTodo(args[1], !opts.Inactive)
				if err != nil {
					return f.Fail("invalid todo", err)
				}
				id, err := validator.TodoID(args[0])
				if err != nil {
					return f.Fail("invalid id", err)
				}

				updated, err := st.UpdateTodo(ctx, log, store.Todo{ID: id, Text: body.Text, Active: body.Active})
				if err != nil {
					return f.Fail("failed to update todo", err)
				}
				return f.Success(map[string]any{"id": id, "updated": updated}, f.Sprintf("Updated %d todo(s)", updated))
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Inactive, "inactive", false, "mark the todo as done")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Long: `Delete a todo permanently.

Example:
  todos delete 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(ctx context.Context, st *store.Store, log *logger.Logger, f *OutputFormatter) error {
				id, err := validator.TodoID(args[0])
				if err != nil {
					return f.Fail("invalid id", err)
				}

				deleted, err := st.DeleteTodo(ctx, log, id)
				if err != nil {
					return f.Fail("failed to delete todo", err)
				}
				return f.Success(map[string]any{"id": id, "deleted": deleted}, f.Sprintf("Deleted %d todo(s)", deleted))
			})
		},
	}
}

// validator is shared by all commands; the CUE definitions compile once.
var validator = schema.MustNew()

// validateTodo checks text and active against the same definition the HTTP
// API uses.
func validateTodo(text string, active bool) (schema.TodoBody, error) {
	raw, err := json.Marshal(schema.TodoBody{Text: text, Active: active})
	if err != nil {
		return schema.TodoBody{}, err
	}
	return validator.Todo(raw)
}

// withStore resolves config, opens a store for the duration of fn and
// closes it afterwards. Store diagnostics go to stderr so stdout carries
// only command output.
func withStore(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *store.Store, *logger.Logger, *OutputFormatter) error) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		return err
	}
	f.VerboseLog("Using %s database %s", cfg.Driver, cfg.Database)

	log := logger.New(logger.DefaultID, logger.WithOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr()))
	if !opts.Verbose {
		log = nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st := store.New(cfg.StoreConfig())
	if err := st.Open(ctx, log); err != nil {
		return f.Fail("failed to open database", err)
	}
	defer st.Close(log)

	return fn(ctx, st, log, f)
}

func formatTodos(f *OutputFormatter, todos []store.Todo) string {
	var b strings.Builder
	for _, todo := range todos {
		fmt.Fprintf(&b, "%4d  %s\n", todo.ID, formatTodo(todo))
	}
	b.WriteString(f.Sprintf("%d todo(s)", len(todos)))
	return b.String()
}

func formatTodo(todo store.Todo) string {
	mark := " "
	if !todo.Active {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s", mark, todo.Text)
}
