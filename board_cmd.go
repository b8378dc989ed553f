package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/board"
)

// consoleNotifier prints notices as they arrive.
type consoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func (n *consoleNotifier) Notify(kind, message string, _ time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, renderNotice(kind, message))
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the kanban board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(ctx); err != nil {
			return err
		}

		kanban := board.NewKanban(a.store, a.client, &consoleNotifier{out: cmd.ErrOrStderr()}, a.logger)
		defer kanban.Close()
		kanban.SetPageSize(a.pageSize(ctx))

		if err := kanban.Load(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderBoard(kanban.Board(), time.Now()))
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <ticket> <status|ticket>",
	Short: "Move a ticket onto a column or next to another ticket",
	Long: `Move drags a ticket and drops it onto a column or another ticket.

Dropping on a column of another status changes the ticket's status; dropping
on a ticket in the same column only reorders the local board. Statuses may be
written in any case with dashes or underscores for spaces, e.g. in-progress.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(ctx); err != nil {
			return err
		}

		notifier := &consoleNotifier{out: cmd.ErrOrStderr()}
		kanban := board.NewKanban(a.store, a.client, notifier, a.logger)
		defer kanban.Close()
		kanban.SetPageSize(a.pageSize(ctx))

		if err := kanban.Load(ctx); err != nil {
			return err
		}

		target := args[1]
		if status, ok := api.ParseStatus(target); ok {
			target = string(status)
		}

		kanban.OnDragStart(args[0])
		result := kanban.OnDragEnd(target)
		kanban.Wait()

		switch result.Outcome {
		case board.DragAborted:
			return fmt.Errorf("nothing to move: %q or %q is not on the board", args[0], args[1])
		case board.DragUnchanged:
			fmt.Fprintln(cmd.OutOrStdout(), "Ticket dropped on itself, nothing changed")
			return nil
		case board.DragReordered:
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered within %s (local only)\n", result.From)
			return nil
		}

		moved, ok := a.store.State().Tickets.Find(result.TicketID)
		if !ok || moved.Status != result.To {
			return fmt.Errorf("status change to %s was not saved", result.To)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderBoard(kanban.Board(), time.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardCmd, moveCmd)
}
