package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"studycal/internal/app"
	"studycal/internal/config"
	"studycal/internal/feed"
	"studycal/internal/grid"
	"studycal/internal/guard"
	appLog "studycal/internal/log"
)

func main() {
	cliApp := &cli.App{
		Name:  "studycal",
		Usage: "Personal study calendar: local events, auth-backed syllabus analysis, ICS feed overlays.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "./studycal.yaml",
				Usage: "Path to the config file (created on first run)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug/info/warn/error)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			loginCommand(),
			signupCommand(),
			logoutCommand(),
			whoamiCommand(),
			exportCommand(),
			uploadCommand(),
			refreshCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		appLog.Error("studycal failed", err)
		os.Exit(1)
	}
}

// setup loads config and builds the controller with slots read.
func setup(c *cli.Context) (*app.App, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if v := c.String("log-level"); v != "" {
		level = v
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	a, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	a.Load()
	return a, nil
}

// consoleSurface is the minimal grid collaborator for headless runs: it
// only reports how much there is to draw.
type consoleSurface struct{}

func (consoleSurface) SetEntries(entries []grid.Entry) {
	appLog.Info("calendar updated", "entries", len(entries))
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Keep the calendar running: refresh subscribed feeds on the configured schedule.",
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			a.Attach(consoleSurface{})
			if err := a.Start(c.Context); err != nil {
				return err
			}

			appLog.Info("studycal running", "access", a.CalendarAccess().String())

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			appLog.Info("signal received, shutting down", "signal", sig.String())
			return nil
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in against the auth service and persist the session.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			id, err := a.Session.Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>\n", id.Name, id.Email)
			return nil
		},
	}
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account and persist the session.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			id, err := a.Session.Signup(c.Context, c.String("name"), c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Printf("Welcome, %s <%s>\n", id.Name, id.Email)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the persisted session.",
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			a.Session.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session.",
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			id := a.Session.Current()
			if id == nil {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s <%s> (id %s)\n", id.Name, id.Email, id.ID)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the calendar's events to an iCalendar file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "studycal.ics", Usage: "Output path"},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			events := a.Events.List()
			data, err := feed.Export(events, a.Location())
			if err != nil {
				return err
			}

			out := c.String("out")
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			fmt.Printf("Wrote %d events to %s\n", len(events), out)
			return nil
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a syllabus PDF for AI analysis (requires login).",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "Path to the PDF"},
			&cli.StringFlag{Name: "course", Required: true, Usage: "Course name"},
			&cli.BoolFlag{Name: "plan-to-calendar", Usage: "Add extracted dates and exams as calendar events"},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			if a.CalendarAccess() != guard.Render {
				return fmt.Errorf("please log in to upload a syllabus (studycal login)")
			}
			id := a.Session.Current()

			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.Upload.Upload(c.Context, f, filepath.Base(c.String("file")), id.ID, c.String("course"))
			if err != nil {
				return err
			}

			if res.AIGeneratedSummary != "" {
				fmt.Println("Summary:")
				fmt.Println(res.AIGeneratedSummary)
			}
			if res.StudyPlan != nil {
				fmt.Printf("\nStrategy:   %s\n", res.StudyPlan.OverallStrategy)
				fmt.Printf("Hours:      %d\n", res.StudyPlan.EstimatedStudyHours)
				fmt.Printf("Difficulty: %s\n", res.StudyPlan.DifficultyAssessment)
			}

			if c.Bool("plan-to-calendar") {
				n := a.AddPlanToCalendar(res)
				fmt.Printf("\nAdded %d events to the calendar.\n", n)
			}
			return nil
		},
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Fetch and expand all subscribed feeds once.",
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.Stop()

			if err := a.RefreshFeeds(c.Context); err != nil {
				return err
			}
			fmt.Printf("%d feed occurrences in window.\n", len(a.Occurrences()))
			return nil
		},
	}
}
