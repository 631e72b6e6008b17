package main

import (
	"log"
	"net/http"
	"os"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/store"
)

func newStore() *store.Store {
	var state localstate.Store = localstate.NewMemory()
	if app.IsClient {
		state = browserStorage{prefix: "tracker."}
	}
	client := api.New(app.Getenv("TRACKER_API_URL"), state)
	return store.New(client, state, zap.NewNop())
}

func newHandler(apiURL string) *app.Handler {
	return &app.Handler{
		Name:        "Tracker",
		Description: "Issue board",
		Env:         map[string]string{"TRACKER_API_URL": apiURL},
	}
}

func main() {
	st := newStore()
	app.Route("/", func() app.Composer { return &BoardView{store: st} })
	app.RunWhenOnBrowser()

	apiURL := os.Getenv("TRACKER_API_URL")
	if apiURL == "" {
		apiURL = api.DefaultBaseURL
	}
	addr := os.Getenv("TRACKER_BOARD_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	http.Handle("/", newHandler(apiURL))
	log.Printf("Board running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
