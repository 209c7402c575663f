package main

import (
	"io"
	"os"
	"time"

	mmd2pdf "github.com/alnah/go-mmd2pdf"
	"github.com/alnah/go-mmd2pdf/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, base configuration and the converter factory.
type Environment struct {
	Now          func() time.Time
	Stdout       io.Writer
	Stderr       io.Writer
	Config       *config.Config // Used when no config file is named
	NewConverter func(opts ...mmd2pdf.Option) (Converter, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:          time.Now,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Config:       config.DefaultConfig(),
		NewConverter: newConverter,
	}
}

// newConverter adapts mmd2pdf.NewConverter to the Converter interface.
func newConverter(opts ...mmd2pdf.Option) (Converter, error) {
	c, err := mmd2pdf.NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}
