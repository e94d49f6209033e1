package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/pkg/app"
)

// program adapts the application loop to the service manager's interface.
type program struct {
	cfgPath string
}

func (p *program) Start(_ service.Service) error {
	go p.run()
	return nil
}

func (p *program) run() {
	if err := app.Run(app.RunParams{
		ConfigPath: p.cfgPath,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (p *program) Stop(_ service.Service) error {
	// app.Run blocks on shutdown signals; deliver one to unwind it.
	return syscall.Kill(os.Getpid(), syscall.SIGTERM)
}

func newService(cfgPath string) (service.Service, error) {
	args := []string{"service", "run"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}

	return service.New(&program{cfgPath: cfgPath}, &service.Config{
		Name:        "parley",
		DisplayName: "Parley",
		Description: "Session-aware chat gateway for completion APIs",
		Arguments:   args,
	})
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run parley under the system service manager",
	}

	var cfgPath string
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")

	actions := []struct {
		use   string
		short string
		run   func(s service.Service) error
	}{
		{"install", "Install parley as a system service", func(s service.Service) error { return s.Install() }},
		{"uninstall", "Remove the parley system service", func(s service.Service) error { return s.Uninstall() }},
		{"start", "Start the installed service", func(s service.Service) error { return s.Start() }},
		{"stop", "Stop the installed service", func(s service.Service) error { return s.Stop() }},
		{"run", "Run in the foreground under the service manager", func(s service.Service) error { return s.Run() }},
	}

	for _, a := range actions {
		run := a.run
		cmd.AddCommand(&cobra.Command{
			Use:   a.use,
			Short: a.short,
			RunE: func(_ *cobra.Command, _ []string) error {
				s, err := newService(cfgPath)
				if err != nil {
					return err
				}
				return run(s)
			},
		})
	}

	return cmd
}
