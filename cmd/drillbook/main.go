package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/rsheridan/drillbook/internal/app"
	"github.com/rsheridan/drillbook/internal/config"
	"github.com/rsheridan/drillbook/internal/storage"
)

const usage = `drillbook - spaced-repetition study scheduler

Usage:
  drillbook [flags] <command> [args]

Commands:
  review                     Review today's due questions
  list [--limit N]           Show today's due questions
  all [--limit N]            Show all questions with their due dates
  question <id>              Show a specific question and its history
  answer <id>                Show the answer to a specific question
  create                     Create a new question interactively
  edit <id>                  Edit a question interactively
  delete <id>                Delete a question and its history
  delete-history [--all|id]  Reset scheduling history
  import <file...>           Import questions from markdown files
  reset                      Delete all questions and progress

Flags:
      --config string     path to the config file
      --database string   path to the SQLite database file
`

func main() {
	defaults := config.Default()

	global := pflag.NewFlagSet("drillbook", pflag.ExitOnError)
	global.SetInterspersed(false)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", config.DefaultPath(), "path to the config file")
	global.String("database", defaults.Database, "path to the SQLite database file")
	global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}
	command, args := args[0], args[1:]

	cfg, err := config.Load(*configPath, global)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	a := app.New(db, cfg, os.Stdin, os.Stdout)
	if err := run(a, command, args); err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func run(a *app.App, command string, args []string) error {
	switch command {
	case "review":
		return a.Review()
	case "list":
		limit, err := limitFlag(command, args)
		if err != nil {
			return err
		}
		return a.ShowDue(limit)
	case "all":
		limit, err := limitFlag(command, args)
		if err != nil {
			return err
		}
		return a.ShowAll(limit)
	case "question":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return a.ShowQuestion(id)
	case "answer":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return a.ShowAnswer(id)
	case "create":
		return a.Create()
	case "edit":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return a.Edit(id)
	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return a.Delete(id)
	case "delete-history":
		flags := pflag.NewFlagSet(command, pflag.ExitOnError)
		all := flags.Bool("all", false, "delete history for all questions")
		flags.Parse(args)
		if *all {
			return a.DeleteAllHistory()
		}
		id, err := idArg(flags.Args())
		if err != nil {
			return err
		}
		return a.DeleteHistory(id)
	case "import":
		if len(args) == 0 {
			return fmt.Errorf("expected at least one file to import")
		}
		return a.Import(args...)
	case "reset":
		return a.ResetDatabase()
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// limitFlag parses an optional --limit flag; absent means no limit,
// which is distinct from --limit 0.
func limitFlag(command string, args []string) (int, error) {
	flags := pflag.NewFlagSet(command, pflag.ExitOnError)
	limit := flags.Int("limit", storage.NoLimit, "limit the number of questions shown")
	if err := flags.Parse(args); err != nil {
		return 0, err
	}
	return *limit, nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one question ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid question ID %q", args[0])
	}
	return id, nil
}
