// Command projectplan is a thin demo CLI over the scheduling engine: load a
// project file, run it, and print the published schedule and diagnostic
// log. It exists to exercise engine.Engine end to end, not as a production
// planning tool.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"projectplan/engine"
	"projectplan/logging"
	"projectplan/runconfig"
	"projectplan/schedule"
)

func main() {
	log := logging.NewDefault()

	app := &cli.App{
		Name:  "projectplan",
		Usage: "deterministic CPM scheduling over a project file",
		Commands: []*cli.Command{
			scheduleCommand(),
			explainCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:      "schedule",
		Usage:     "compute and print a project's schedule and diagnostics",
		ArgsUsage: "<project.json>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "level", Usage: "run resource leveling after CPM"},
			&cli.BoolFlag{Name: "strict", Usage: "treat warnings as errors for the exit status"},
			&cli.StringFlag{Name: "config", Usage: "YAML tuning file path"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one project file argument")
			}

			cfg, err := runconfig.Load(c.String("config"))
			if err != nil {
				return err
			}

			p, err := loadProject(c.Args().First())
			if err != nil {
				return err
			}

			eng := engine.New(cfg)
			run, err := eng.Schedule(p, nil, schedule.Options{
				EnableLeveling: c.Bool("level"),
				Strict:         c.Bool("strict"),
			})
			if err != nil {
				return err
			}

			printSchedule(run.Schedule)
			printDiagnostics(run.Diagnostics)

			if run.Diagnostics.HasErrorsStrict(c.Bool("strict")) {
				os.Exit(2)
			}
			return nil
		},
	}
}

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "explain why a task is scheduled the way it is",
		ArgsUsage: "<project.json> <task-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected a project file and a task id")
			}

			p, err := loadProject(c.Args().Get(0))
			if err != nil {
				return err
			}

			eng := engine.NewDefault()
			run, err := eng.Schedule(p, nil, schedule.Options{})
			if err != nil {
				return err
			}

			expl, err := eng.Explain(run, c.Args().Get(1))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(expl)
		},
	}
}

func printSchedule(sch *schedule.Schedule) {
	fmt.Printf("run %s: %s -> %s\n", sch.RunID, sch.ProjectStart.Format("2006-01-02"), sch.ProjectEnd.Format("2006-01-02"))
	for _, ts := range sch.Ordered() {
		marker := " "
		if ts.Critical {
			marker = "*"
		}
		fmt.Printf("%s %-30s %s -> %s (slack %s)\n", marker, ts.ID,
			ts.Start.Format("2006-01-02"), ts.Finish.Format("2006-01-02"), ts.TotalSlack)
	}
}

func printDiagnostics(log *schedule.DiagnosticLog) {
	if len(log.Diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return
	}
	for _, d := range log.Diagnostics {
		fmt.Printf("[%s] %s: %s\n", d.Severity, d.Code, d.Message)
	}
}
