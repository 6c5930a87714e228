package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"spacerh.dev/internal/client"
	"spacerh.dev/internal/console"
	"spacerh.dev/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	baseURL := os.Getenv("SPACE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	creds := session.NewFileCredentials(tokenPath)

	var store *session.Store
	api := client.New(baseURL, client.OnUnauthorized(func() {
		if store != nil {
			store.HandleUnauthorized()
		}
	}))
	store = session.NewStore(api, creds)

	app := &app{
		api:   api,
		store: store,
		flow:  console.NewFlow(store.Login),
		in:    bufio.NewReader(os.Stdin),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "login":
		err = app.cmdLogin(ctx, args)
	case "logout":
		err = app.cmdLogout(ctx)
	case "whoami":
		err = app.cmdWhoami(ctx)
	case "menu":
		err = app.cmdMenu(ctx)
	case "users":
		err = app.cmdUsers(ctx)
	case "companies":
		err = app.cmdCompanies(ctx)
	case "requests":
		err = app.cmdRequests(ctx, args)
	case "assign":
		err = app.cmdAssign(ctx, args)
	case "attendance":
		err = app.cmdAttendance(ctx, args)
	case "stats":
		err = app.cmdStats(ctx, args)
	case "payments":
		err = app.cmdPayments(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("space - SPACE staffing console")
	fmt.Println()
	fmt.Println("Usage: space <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login <email>                 Sign in and store the session token")
	fmt.Println("  logout                        Sign out and clear the stored token")
	fmt.Println("  whoami                        Show the current account")
	fmt.Println("  menu                          Show the sections your role can open")
	fmt.Println("  users                         List accounts")
	fmt.Println("  companies                     List client companies")
	fmt.Println("  requests [from] [to]          List daily staffing requests")
	fmt.Println("  assign <shift-id> <user-id>   Assign an employee to a shift")
	fmt.Println("  attendance <id> <status>      Update an assignment status")
	fmt.Println("  stats [from] [to]             Requests per company")
	fmt.Println("  payments <from> <to>          Payments report for the period")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  SPACE_API_URL                 API base URL (default: http://localhost:8080)")
}

type app struct {
	api   *client.Client
	store *session.Store
	flow  *console.Flow
	in    *bufio.Reader
}

// requireShell recovers the stored session and refuses to run when the
// guard resolves to the login screen.
func (a *app) requireShell(ctx context.Context) (session.State, error) {
	_ = a.store.Recover(ctx)
	state := a.store.State()
	if console.Resolve(state) != console.ViewShell {
		return session.State{}, errors.New("not signed in, run: space login <email>")
	}
	return state, nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: space login <email>")
	}
	fmt.Print("Password: ")
	password, err := a.in.ReadString('\n')
	if err != nil {
		return err
	}
	password = strings.TrimRight(password, "\r\n")

	if err := a.flow.Submit(ctx, args[0], password); err != nil {
		return err
	}
	state := a.store.State()
	color.Green("Signed in as %s (%s)", state.User.Email, state.User.Role)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	_ = a.store.Recover(ctx)
	if console.Resolve(a.store.State()) != console.ViewShell {
		fmt.Println("Already signed out.")
		return nil
	}
	fmt.Print("Sign out? [y/N]: ")
	answer, err := a.in.ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(strings.ToLower(answer)) != "y" {
		fmt.Println("Aborted.")
		return nil
	}
	a.store.Logout()
	color.Green("Signed out.")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	state, err := a.requireShell(ctx)
	if err != nil {
		return err
	}
	user := state.User
	fmt.Printf("%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	fmt.Printf("role: %s  active: %v\n", user.Role, user.IsActive)
	return nil
}

func (a *app) cmdMenu(ctx context.Context) error {
	state, err := a.requireShell(ctx)
	if err != nil {
		return err
	}
	for _, item := range console.VisibleItems(state.User.Role, console.DefaultMenu()) {
		fmt.Printf("%-16s %s\n", item.Label, item.Path)
	}
	return nil
}

func (a *app) cmdUsers(ctx context.Context) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%v\n", u.ID, u.FirstName, u.LastName, u.Email, u.Role, u.IsActive)
	}
	return w.Flush()
}

func (a *app) cmdCompanies(ctx context.Context) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	companies, err := a.api.ListCompanies(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAX ID\tCONTACT\tACTIVE")
	for _, c := range companies {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n", c.ID, c.Name, c.TaxID, c.ContactPerson, c.IsActive)
	}
	return w.Flush()
}

func (a *app) cmdRequests(ctx context.Context, args []string) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	filter := client.RequestFilter{}
	if len(args) > 0 {
		filter.From = args[0]
	}
	if len(args) > 1 {
		filter.To = args[1]
	}
	requests, err := a.api.ListRequests(ctx, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCOMPANY\tSTATUS\tSHIFTS\tWORKERS")
	for _, r := range requests {
		workers := 0
		for _, shift := range r.Shifts {
			workers += len(shift.Assignments)
		}
		name := ""
		if r.Company != nil {
			name = r.Company.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n", r.ID, r.RequestDate, name, r.Status, len(r.Shifts), workers)
	}
	return w.Flush()
}

func (a *app) cmdAssign(ctx context.Context, args []string) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	if len(args) != 2 {
		return errors.New("usage: space assign <shift-id> <user-id>")
	}
	shiftID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad shift id %q", args[0])
	}
	employeeID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad user id %q", args[1])
	}
	asg, err := a.api.AssignEmployee(ctx, shiftID, employeeID)
	if err != nil {
		return err
	}
	color.Green("Assignment %d created (%s)", asg.ID, asg.Status)
	return nil
}

func (a *app) cmdAttendance(ctx context.Context, args []string) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	if len(args) != 2 {
		return errors.New("usage: space attendance <assignment-id> <status>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad assignment id %q", args[0])
	}
	asg, err := a.api.UpdateAssignmentStatus(ctx, id, args[1])
	if err != nil {
		return err
	}
	name := ""
	if asg.Employee != nil {
		name = asg.Employee.FirstName + " " + asg.Employee.LastName
	}
	color.Green("Assignment %d (%s) is now %s", asg.ID, name, asg.Status)
	return nil
}

func (a *app) cmdStats(ctx context.Context, args []string) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	filter := client.RequestFilter{}
	if len(args) > 0 {
		filter.From = args[0]
	}
	if len(args) > 1 {
		filter.To = args[1]
	}
	stats, err := a.api.DashboardStats(ctx, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMPANY\tREQUESTS")
	for _, row := range stats {
		fmt.Fprintf(w, "%s\t%d\n", row.CompanyName, row.RequestCount)
	}
	return w.Flush()
}

func (a *app) cmdPayments(ctx context.Context, args []string) error {
	if _, err := a.requireShell(ctx); err != nil {
		return err
	}
	if len(args) != 2 {
		return errors.New("usage: space payments <from> <to>")
	}
	report, err := a.api.PaymentsReport(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCOMPANY\tGROSS\tDISCOUNT\tNET")
	for _, row := range report.Rows {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\n", row.RequestDate, row.CompanyName, row.Gross, row.Discount, row.Net)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	color.Green("Total: %.2f", report.Total)
	return nil
}
