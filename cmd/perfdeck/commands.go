package main

import (
	"io"
	"os"

	"golang.org/x/term"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout         io.Writer
	stderr         io.Writer
	newBackend     backendFactory
	loadConfig     configLoader
	openRepository repositoryOpener
	openUILog      func() (io.WriteCloser, error)
	confirm        confirmFunc
	isTerminal     func() bool
	version        string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:         stdout,
		stderr:         stderr,
		newBackend:     newCommandBackend,
		loadConfig:     loadConfig,
		openRepository: openRepository,
		openUILog:      openUILog,
		confirm:        confirmWithForm,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		version: buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":     NewUICommand(wiring.stderr, wiring.newBackend, wiring.openRepository, wiring.openUILog),
		"ls":     NewLSCommand(wiring.stdout, wiring.stderr, wiring.newBackend),
		"delete": NewDeleteCommand(wiring.stdout, wiring.stderr, wiring.newBackend, wiring.confirm, wiring.isTerminal),
		"url":    NewURLCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.openRepository),
		"config": NewConfigCommand(wiring.stdout, wiring.stderr, wiring.loadConfig),
	}
}
