package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
	"eventrequests/internal/usecase"
	"eventrequests/internal/validation"
)

// errUsage means the flags were wrong and the flag set already said so.
var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{"submit", "browse", "accept", "reject", "mine", "select", "watch"}

var commands = map[string]command{
	"submit": {"create an event request (requester)", runSubmit},
	"browse": {"list open event requests (organizer)", runBrowse},
	"accept": {"accept an event request (organizer)", runAccept},
	"reject": {"reject an event request (organizer)", runReject},
	"mine":   {"list your event requests and their responses (requester)", runMine},
	"select": {"select an organizer for your request (requester)", runSelect},
	"watch":  {"print live notifications until interrupted", runWatch},
}

func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func runSubmit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	var d validation.Draft
	fs.StringVar(&d.EventType, "type", "", "event type: "+eventTypeList())
	fs.StringVar(&d.Venue, "venue", "", "venue")
	fs.StringVar(&d.Date, "date", "", "date, YYYY-MM-DD")
	fs.StringVar(&d.Budget, "budget", "", "budget")
	fs.StringVar(&d.Description, "description", "", "description, at least 10 characters")
	if err := parse(fs, args); err != nil {
		return err
	}

	a.connectPush(ctx)
	defer a.relay.Disconnect()

	form := usecase.NewRequestForm(a.api, a.relay, a.identity, a.logger, usecase.FormOptions{DismissAfter: a.cfg.FormDismissAfter})
	form.Open()
	form.SetDraft(d)
	err := form.Submit(ctx)
	printNotice(form.State().Notice)
	return err
}

func runBrowse(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	eventType := fs.String("type", "", "only this event type: "+eventTypeList())
	search := fs.String("search", "", "match event type, venue or requester")
	if err := parse(fs, args); err != nil {
		return err
	}

	board := usecase.NewOrganizerBoard(a.api, a.relay, a.alerter, a.identity, a.logger)
	board.SetFilter(domain.EventType(*eventType))
	board.SetSearch(*search)
	if err := board.Refresh(ctx); err != nil {
		return err
	}
	printOpenRequests(os.Stdout, board.Visible(), a.identity.UserID)
	return nil
}

func runAccept(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("accept", flag.ContinueOnError)
	id := fs.String("id", "", "event request id")
	budget := fs.String("budget", "", "proposed budget (defaults to the request budget)")
	if err := parse(fs, args); err != nil {
		return err
	}
	var proposed *float64
	if *budget != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(*budget), 64)
		if err != nil || !validation.PositiveAmount(*budget) {
			a.alerter.Alert("Please enter a valid budget amount")
			return domain.ErrInvalidInput
		}
		proposed = &v
	}
	return a.organizerAction(ctx, *id, func(b *usecase.OrganizerBoard) error {
		return b.Accept(ctx, *id, proposed)
	})
}

func runReject(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("reject", flag.ContinueOnError)
	id := fs.String("id", "", "event request id")
	if err := parse(fs, args); err != nil {
		return err
	}
	return a.organizerAction(ctx, *id, func(b *usecase.OrganizerBoard) error {
		return b.Reject(ctx, *id)
	})
}

// organizerAction loads the board so the request's current state is known,
// then runs action with the push channel connected.
func (a *app) organizerAction(ctx context.Context, id string, action func(*usecase.OrganizerBoard) error) error {
	if id == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		return errUsage
	}
	board := usecase.NewOrganizerBoard(a.api, a.relay, a.alerter, a.identity, a.logger)
	if err := board.Refresh(ctx); err != nil {
		return err
	}
	a.connectPush(ctx)
	defer a.relay.Disconnect()

	err := action(board)
	if errors.Is(err, domain.ErrNotFound) {
		a.alerter.Alert("No open event request with id " + id + ".")
	}
	return err
}

func runMine(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("mine", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}
	board := usecase.NewRequesterBoard(a.api, a.relay, a.alerter, a.identity, a.logger)
	if err := board.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, board.LoadError())
		return err
	}
	if board.Empty() {
		fmt.Println("You have not submitted any event requests yet.")
		return nil
	}
	printMyRequests(os.Stdout, board.Requests())
	return nil
}

func runSelect(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	id := fs.String("id", "", "event request id")
	organizer := fs.String("organizer", "", "id of an organizer who accepted")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" || *organizer == "" {
		fmt.Fprintln(os.Stderr, "-id and -organizer are required")
		return errUsage
	}

	board := usecase.NewRequesterBoard(a.api, a.relay, a.alerter, a.identity, a.logger)
	if err := board.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, board.LoadError())
		return err
	}
	a.connectPush(ctx)
	defer a.relay.Disconnect()

	err := board.SelectOrganizer(ctx, *id, *organizer)
	if errors.Is(err, domain.ErrNotFound) {
		a.alerter.Alert("You have no event request with id " + *id + ".")
	}
	if err == nil && board.LoadError() == "" {
		printMyRequests(os.Stdout, board.Requests())
	}
	return err
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}

	a.relay.OnStatus(func(s relay.Status) {
		fmt.Fprintln(os.Stderr, "[push]", s.Message())
	})
	sub := a.relay.On(domain.MessageTypeNotification, func(msg relay.Message) {
		var n domain.Notification
		if err := msg.Decode(&n); err != nil {
			a.logger.Debug("undecodable notification", "err", err)
			return
		}
		printNotification(os.Stdout, n)
	})
	defer a.relay.Off(sub)

	a.relay.Connect(ctx)
	defer a.relay.Disconnect()

	select {
	case <-ctx.Done():
		return nil
	case <-a.relay.Done():
		return errors.New(a.relay.Status().Message())
	}
}

func printNotice(n usecase.Notice) {
	switch n.Kind {
	case usecase.NoticeSuccess:
		fmt.Println(n.Text)
	case usecase.NoticeError:
		fmt.Fprintln(os.Stderr, n.Text)
	}
}

func printOpenRequests(w io.Writer, list []domain.EventRequest, me string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No event requests found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tVENUE\tDATE\tBUDGET\tREQUESTER\tSTATUS\tYOU")
	for _, r := range list {
		yours := "-"
		if in := r.Interest(me); in != nil {
			yours = string(in.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			r.ID, r.EventType, r.Venue, r.Date, r.Budget, requesterName(r.Requester), r.Status, yours)
	}
	_ = tw.Flush()
}

func printMyRequests(w io.Writer, list []domain.EventRequest) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s at %s on %s\tbudget %.2f\t%s\n", r.ID, r.EventType, r.Venue, r.Date, r.Budget, r.Status)
		if len(r.InterestedOrganizers) == 0 {
			fmt.Fprintln(tw, "\tno responses yet\t\t")
		}
		for _, in := range r.InterestedOrganizers {
			mark := ""
			if r.SelectedOrganizerID == in.OrganizerID {
				mark = "selected"
			}
			proposed := "-"
			if in.ProposedBudget != nil {
				proposed = fmt.Sprintf("%.2f", *in.ProposedBudget)
			}
			fmt.Fprintf(tw, "\torganizer %s\t%s\tproposed %s\t%s\n", in.OrganizerID, in.Status, proposed, mark)
		}
	}
	_ = tw.Flush()
}

func printNotification(w io.Writer, n domain.Notification) {
	at := n.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	line := fmt.Sprintf("%s %s", at.Local().Format(time.TimeOnly), n.Kind)
	if n.EventID != "" {
		line += " request=" + n.EventID
	}
	if n.OrganizerID != "" {
		line += " organizer=" + n.OrganizerID
	}
	if n.Message != "" {
		line += " " + strconv.Quote(n.Message)
	}
	fmt.Fprintln(w, line)
}

func requesterName(r domain.Requester) string {
	switch {
	case r.FullName != "" && r.Email != "":
		return r.FullName + " <" + r.Email + ">"
	case r.FullName != "":
		return r.FullName
	case r.Email != "":
		return r.Email
	}
	return r.ID
}

func eventTypeList() string {
	names := make([]string, len(domain.EventTypes))
	for i, t := range domain.EventTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
