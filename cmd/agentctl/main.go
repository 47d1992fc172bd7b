// Command agentctl is a terminal counterpart of the browser front end: it
// signs up and logs in against a propal server, updates the profile and walks
// the cascading provider/model/language configuration. Session and agent
// state live in a local JSON file, the CLI analog of browser local storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"propal/internal/localstore"
	"propal/internal/selection"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "agentctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("agentctl", flag.ExitOnError)
	server := global.String("server", envOr("PROPAL_SERVER", "http://localhost:8080"), "server base URL")
	statePath := global.String("state", envOr("PROPAL_STATE", defaultStatePath()), "state file path")
	global.Usage = usage(global)
	_ = global.Parse(args)

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return fmt.Errorf("missing command")
	}

	store, err := localstore.Open(*statePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := newAPIClient(*server, store.Token())

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "signup":
		return runSignup(ctx, client, cmdArgs)
	case "login":
		return runLogin(ctx, client, store, cmdArgs)
	case "logout":
		return store.ClearSession()
	case "profile":
		return runProfile(ctx, client, store, cmdArgs)
	case "configure":
		return runConfigure(ctx, client, store, cmdArgs)
	case "show":
		return runShow(ctx, client, store)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runSignup(ctx context.Context, client *apiClient, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	username := fs.String("username", "", "username (required)")
	email := fs.String("email", "", "email (required)")
	password := fs.String("password", "", "password (required)")
	phone := fs.String("phone", "", "phone (optional)")
	_ = fs.Parse(args)

	if err := client.Signup(ctx, *username, *email, *password, *phone); err != nil {
		return err
	}
	fmt.Println("account created, log in with: agentctl login")
	return nil
}

func runLogin(ctx context.Context, client *apiClient, store *localstore.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email (required)")
	password := fs.String("password", "", "password (required)")
	_ = fs.Parse(args)

	tok, user, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := store.SetSession(tok, user); err != nil {
		return err
	}
	fmt.Printf("logged in as %s <%s>\n", user.Username, user.Email)
	return nil
}

func runProfile(ctx context.Context, client *apiClient, store *localstore.Store, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	newEmail := fs.String("email", "", "new email")
	newPassword := fs.String("password", "", "new password")
	_ = fs.Parse(args)

	if store.Token() == "" {
		return fmt.Errorf("not logged in")
	}
	if err := client.UpdateProfile(ctx, *newEmail, *newPassword); err != nil {
		return err
	}
	if *newEmail != "" {
		if user, ok := store.User(); ok {
			user.Email = *newEmail
			if err := store.SetSession(store.Token(), user); err != nil {
				return err
			}
		}
	}
	fmt.Println("profile updated")
	return nil
}

func runConfigure(ctx context.Context, client *apiClient, store *localstore.Store, args []string) error {
	fs := flag.NewFlagSet("configure", flag.ExitOnError)
	provider := fs.String("provider", "", "provider id")
	model := fs.String("model", "", "model id")
	language := fs.String("language", "", "language")
	_ = fs.Parse(args)

	machine := selection.New(store)
	if err := machine.Restore(); err != nil {
		return err
	}

	gen := machine.BeginFetch()
	cat, err := client.FetchCatalog(ctx)
	if err != nil {
		machine.FailCatalog(gen, err)
		return fmt.Errorf("fetch catalog: %w", err)
	}
	machine.ResolveCatalog(gen, cat)

	if *provider != "" {
		if err := machine.SelectProvider(*provider); err != nil {
			return err
		}
	}
	if *model != "" {
		if err := machine.SelectModel(*model); err != nil {
			return err
		}
	}
	if *language != "" {
		if err := machine.SelectLanguage(*language); err != nil {
			return err
		}
	}

	printSelection(machine)
	return nil
}

func runShow(ctx context.Context, client *apiClient, store *localstore.Store) error {
	if user, ok := store.User(); ok {
		fmt.Printf("user: %s <%s>\n", user.Username, user.Email)
	} else {
		fmt.Println("user: not logged in")
	}

	machine := selection.New(store)
	if err := machine.Restore(); err != nil {
		return err
	}
	gen := machine.BeginFetch()
	cat, err := client.FetchCatalog(ctx)
	if err != nil {
		machine.FailCatalog(gen, err)
		fmt.Printf("catalog: unavailable (%v)\n", err)
		sel := machine.Current()
		if sel != (selection.Selection{}) {
			fmt.Printf("saved config (unvalidated): %s / %s / %s\n", sel.Provider, sel.Model, sel.Language)
		}
		return nil
	}
	machine.ResolveCatalog(gen, cat)

	printSelection(machine)
	return nil
}

func printSelection(m *selection.Machine) {
	sel := m.Current()
	switch m.Phase() {
	case selection.PhaseFullySelected:
		fmt.Printf("agent config: %s / %s / %s\n", sel.Provider, sel.Model, sel.Language)
	case selection.PhaseModelSelected:
		fmt.Printf("provider %s, model %s; pick a language: %v\n", sel.Provider, sel.Model, m.Languages())
	case selection.PhaseProviderSelected:
		fmt.Printf("provider %s; pick a model:", sel.Provider)
		for _, mod := range m.Models() {
			fmt.Printf(" %s", mod.ID)
		}
		fmt.Println()
	default:
		fmt.Println("no agent config; pick a provider with: agentctl configure -provider <id>")
	}
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, `usage: agentctl [flags] <command> [command flags]

commands:
  signup     create an account
  login      log in and store the session
  logout     discard the stored session
  profile    update email and/or password
  configure  select provider/model/language for the agent
  show       print the stored session and agent config

flags:`)
		fs.PrintDefaults()
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".propal/state.json"
	}
	return filepath.Join(home, ".propal", "state.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
