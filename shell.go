package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"film-collection/collection"
)

var (
	errColor  = color.New(color.FgRed)
	okColor   = color.New(color.FgGreen)
	headColor = color.New(color.FgCyan, color.Bold)
)

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive collection shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}

// shell is one interactive run: a scanner over the input and the session of
// whoever logs in.
type shell struct {
	ctx  context.Context
	mgr  *collection.CollectionManager
	sess *collection.Session
	in   io.Reader
	out  io.Writer
	sc   *bufio.Scanner
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	s := &shell{
		ctx:  cmd.Context(),
		mgr:  a.mgr,
		sess: a.mgr.NewSession(),
		in:   cmd.InOrStdin(),
		out:  cmd.OutOrStdout(),
	}
	s.sc = bufio.NewScanner(s.in)
	defer a.mgr.Logout(s.sess)

	fmt.Fprintln(s.out, "Welcome to your film collection!")
	s.printHelp()

	for {
		fmt.Fprint(s.out, "\n> ")
		if !s.sc.Scan() {
			break
		}

		switch strings.TrimSpace(s.sc.Text()) {
		case "":
		case "login":
			s.handleLogin()
		case "logout":
			s.handleLogout()
		case "whoami":
			s.handleWhoami()
		case "register":
			s.handleRegister()
		case "list", "list copies":
			s.handleListCopies()
		case "select":
			s.handleSelect()
		case "detail":
			s.handleDetail()
		case "back", "deselect":
			s.handleBack()
		case "delete":
			s.handleDelete()
		case "add copy":
			s.handleAddCopy()
		case "films", "list films":
			s.handleListFilms()
		case "add film":
			s.handleAddFilm()
		case "help":
			s.printHelp()
		case "exit", "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Unknown command. Type 'help' to list commands.")
		}
	}
	return s.sc.Err()
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Account: login, logout, whoami, register")
	fmt.Fprintln(s.out, "  Copies: list, select, detail, back, delete, add copy")
	fmt.Fprintln(s.out, "  Films: films, add film")
	fmt.Fprintln(s.out, "  System: help, exit")
}

func (s *shell) fail(format string, args ...any) {
	errColor.Fprintf(s.out, format+"\n", args...)
}

func (s *shell) ok(format string, args ...any) {
	okColor.Fprintf(s.out, format+"\n", args...)
}

// prompt prints label and reads one trimmed line. ok is false on end of input.
func (s *shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *shell) promptID(kind string) (int64, bool) {
	raw, ok := s.prompt(strings.ToUpper(kind[:1]) + kind[1:] + " ID: ")
	if !ok {
		return 0, false
	}
	id, err := parseID(kind, raw)
	if err != nil {
		s.fail("%v", err)
		return 0, false
	}
	return id, true
}

func (s *shell) requireLogin() bool {
	if !s.sess.Authenticated() {
		s.fail("Please log in first.")
		return false
	}
	return true
}

func (s *shell) handleLogin() {
	username, ok := s.prompt("Username: ")
	if !ok {
		return
	}
	password, err := readPassword(s.in, s.out, s.sc, "Password: ")
	if err != nil {
		s.fail("Error reading password: %v", err)
		return
	}

	ok, err = s.mgr.Login(s.ctx, s.sess, username, password)
	if err != nil {
		s.fail("Error: %v", err)
		return
	}
	if !ok {
		s.fail("Invalid username or password.")
		return
	}
	s.ok("Welcome, %s! You own %d copies.", username, len(s.sess.OwnedCopies()))
}

func (s *shell) handleLogout() {
	if !s.sess.Authenticated() {
		fmt.Fprintln(s.out, "Not logged in.")
		return
	}
	s.mgr.Logout(s.sess)
	s.ok("Logged out.")
}

func (s *shell) handleWhoami() {
	u, ok := s.sess.CurrentUser()
	if !ok {
		fmt.Fprintln(s.out, "Not logged in.")
		return
	}
	fmt.Fprintf(s.out, "%s (ID: %d), %d copies\n", u.Username, u.ID, len(u.Copies))
}

func (s *shell) handleRegister() {
	username, ok := s.prompt("Username: ")
	if !ok {
		return
	}
	if username == "" {
		s.fail("Error: username cannot be empty")
		return
	}
	password, err := readPassword(s.in, s.out, s.sc, fmt.Sprintf("Enter password for %s: ", username))
	if err != nil {
		s.fail("Error reading password: %v", err)
		return
	}
	if strings.TrimSpace(password) == "" {
		s.fail("Error: %v", errEmptyPassword)
		return
	}

	u := collection.User{Username: username, Password: password}
	if err := s.mgr.RegisterUser(s.ctx, &u); err != nil {
		s.fail("Error: %v", err)
		return
	}
	s.ok("Registered '%s' with ID %d", u.Username, u.ID)
}

func (s *shell) handleListCopies() {
	if !s.requireLogin() {
		return
	}
	list, err := s.mgr.OwnedCopies(s.ctx, s.sess)
	if err != nil {
		s.fail("Error: %v", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(s.out, "You don't own any copies yet. Use 'add copy'.")
		return
	}

	headColor.Fprintf(s.out, "%-5s %-30s %-12s %-12s\n", "ID", "Title", "Condition", "Support")
	fmt.Fprintln(s.out, strings.Repeat("-", 62))
	for _, oc := range list {
		oc.Film.Title = displayTitle(oc.Film, 30)
		fmt.Fprintln(s.out, collection.PrettyCopy(oc))
	}
}

func (s *shell) handleSelect() {
	if !s.requireLogin() {
		return
	}
	id, ok := s.promptID("copy")
	if !ok {
		return
	}
	oc, err := s.mgr.SelectCopy(s.ctx, s.sess, id)
	if errors.Is(err, collection.ErrCopyNotOwned) {
		s.fail("Copy %d is not in your collection.", id)
		return
	}
	if err != nil {
		s.fail("Error: %v", err)
		return
	}
	s.printDetail(oc)
}

func (s *shell) handleDetail() {
	c, ok := s.sess.SelectedCopy()
	if !ok {
		fmt.Fprintln(s.out, "No copy selected. Use 'select' first.")
		return
	}
	f, _ := s.sess.SelectedFilm()
	s.printDetail(collection.OwnedCopy{Copy: c, Film: f})
}

func (s *shell) handleBack() {
	if _, ok := s.sess.SelectedCopy(); !ok {
		fmt.Fprintln(s.out, "No copy selected.")
		return
	}
	s.sess.ClearSelection()
	s.ok("Selection cleared.")
}

func (s *shell) printDetail(oc collection.OwnedCopy) {
	headColor.Fprintf(s.out, "Copy %d\n", oc.Copy.ID)
	fmt.Fprintf(s.out, "  Title:       %s\n", displayTitle(oc.Film, 60))
	if !oc.Film.IsZero() {
		fmt.Fprintf(s.out, "  Genre:       %s\n", oc.Film.Genre)
		if oc.Film.Year > 0 {
			fmt.Fprintf(s.out, "  Year:        %d\n", oc.Film.Year)
		}
		fmt.Fprintf(s.out, "  Director:    %s\n", oc.Film.Director)
		if oc.Film.Description != "" {
			fmt.Fprintf(s.out, "  Description: %s\n", oc.Film.Description)
		}
	}
	fmt.Fprintf(s.out, "  Condition:   %s\n", oc.Copy.Condition)
	fmt.Fprintf(s.out, "  Support:     %s\n", oc.Copy.Support)
}

func (s *shell) handleDelete() {
	if !s.requireLogin() {
		return
	}
	c, ok := s.sess.SelectedCopy()
	if !ok {
		fmt.Fprintln(s.out, "No copy selected. Use 'select' first.")
		return
	}
	f, _ := s.sess.SelectedFilm()

	answer, ok := s.prompt(fmt.Sprintf("Delete copy %d of '%s'? [y/N]: ", c.ID, displayTitle(f, 40)))
	if !ok {
		return
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Fprintln(s.out, "Cancelled.")
		return
	}

	if err := s.mgr.DeleteSelectedCopy(s.ctx, s.sess); err != nil {
		s.fail("Error deleting copy: %v", err)
		return
	}
	s.ok("Copy %d deleted.", c.ID)
}

func (s *shell) handleAddCopy() {
	if !s.requireLogin() {
		return
	}
	filmID, ok := s.promptID("film")
	if !ok {
		return
	}
	f, found, err := s.mgr.GetFilm(s.ctx, filmID)
	if err != nil {
		s.fail("Error: %v", err)
		return
	}
	if !found {
		s.fail("Film %d not found. Use 'films' to list the catalogue.", filmID)
		return
	}

	condition, ok := s.prompt("Condition: ")
	if !ok {
		return
	}
	support, ok := s.prompt("Support (DVD, Blu-ray, VHS, ...): ")
	if !ok {
		return
	}

	c := collection.CopyFilm{Condition: condition, Support: support, FilmID: f.ID}
	if err := s.mgr.AddCopy(s.ctx, s.sess, &c); err != nil {
		s.fail("Error adding copy: %v", err)
		return
	}
	s.ok("Added copy %d of '%s'.", c.ID, f.Title)
}

func (s *shell) handleListFilms() {
	films, err := s.mgr.ListFilms(s.ctx)
	if err != nil {
		s.fail("Error: %v", err)
		return
	}
	printFilms(s.out, films)
}

func (s *shell) handleAddFilm() {
	title, ok := s.prompt("Title: ")
	if !ok {
		return
	}
	if title == "" {
		s.fail("Error: title cannot be empty")
		return
	}
	genre, ok := s.prompt("Genre: ")
	if !ok {
		return
	}
	yearStr, ok := s.prompt("Year (optional): ")
	if !ok {
		return
	}
	var year int
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			s.fail("Invalid year: %s", yearStr)
			return
		}
		year = y
	}
	director, ok := s.prompt("Director: ")
	if !ok {
		return
	}
	description, ok := s.prompt("Description (optional): ")
	if !ok {
		return
	}

	f := collection.Film{Title: title, Genre: genre, Year: year, Director: director, Description: description}
	if err := s.mgr.AddFilm(s.ctx, &f); err != nil {
		s.fail("Error adding film: %v", err)
		return
	}
	s.ok("Added film ID %d.", f.ID)
}

// printFilms writes the catalogue table shared by the shell and `film list`.
func printFilms(w io.Writer, films []collection.Film) {
	if len(films) == 0 {
		fmt.Fprintln(w, "No films in the catalogue.")
		return
	}
	headColor.Fprintf(w, "%-5s %-30s %-12s %-6s %-20s\n", "ID", "Title", "Genre", "Year", "Director")
	fmt.Fprintln(w, strings.Repeat("-", 77))
	for _, f := range films {
		year := ""
		if f.Year > 0 {
			year = strconv.Itoa(f.Year)
		}
		fmt.Fprintf(w, "%-5d %-30s %-12s %-6s %-20s\n",
			f.ID, truncateString(f.Title, 30), truncateString(f.Genre, 12), year, truncateString(f.Director, 20))
	}
}

func displayTitle(f collection.Film, maxLen int) string {
	if f.IsZero() {
		return "(unknown film)"
	}
	return truncateString(f.Title, maxLen)
}
