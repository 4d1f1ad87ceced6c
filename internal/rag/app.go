package rag

import (
	"github.com/barwojcik/local-chatbots/pkg/app"
)

// Name is the application name.
const Name = "agentic-rag"

// NewApp creates the RAG application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.New(
		app.WithName(Name),
		app.WithDescription("Agentic RAG chat service with local models"),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			srv, err := NewServer(opts)
			if err != nil {
				return err
			}
			return srv.Run()
		}),
	)
}
