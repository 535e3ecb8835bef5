package root

import (
	"context"
	"errors"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/auth"
	"github.com/andrewbrowne3/caltrack/internal/config"
	"github.com/andrewbrowne3/caltrack/internal/session"
)

// deps bundles everything a command needs to talk to the server.
type deps struct {
	cfg    config.Config
	store  *session.Store
	client *api.Client
	ctrl   *auth.Controller
}

func openDeps() (*deps, func(), error) {
	cfg := config.Load()

	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = session.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
	}

	store, err := session.Open(path)
	if err != nil {
		return nil, nil, err
	}

	client := api.New(cfg.ServerURL, store, api.WithTimeout(cfg.Timeout))
	ctrl := auth.NewController(store, client)

	cleanup := func() {
		_ = store.Close()
	}
	return &deps{cfg: cfg, store: store, client: client, ctrl: ctrl}, cleanup, nil
}

// requireLogin restores the persisted session and fails with a hint
// when there isn't one.
func requireLogin(ctx context.Context, d *deps) error {
	if d.ctrl.Bootstrap(ctx) != auth.StateAuthenticated {
		return errors.New("not logged in (run: caltrack login)")
	}
	return nil
}
